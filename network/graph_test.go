package network_test

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/netfuse/matrix"
	"github.com/katalvlaran/netfuse/network"
)

type GraphSuite struct {
	suite.Suite
	b *network.Builder
}

func (s *GraphSuite) SetupTest() {
	b, err := network.NewBuilder([]string{"A", "B", "C", "D"})
	s.Require().NoError(err)
	s.b = b
}

func (s *GraphSuite) TestSetWeightValidation() {
	require := require.New(s.T())
	require.ErrorIs(s.b.SetWeight("A", "A", 1), network.ErrLoopNotAllowed)
	require.ErrorIs(s.b.SetWeight("A", "Z", 1), network.ErrEntityNotFound)
	require.ErrorIs(s.b.SetWeight("A", "B", math.NaN()), network.ErrBadWeight)
	require.NoError(s.b.SetWeight("A", "B", 0.5))
}

func (s *GraphSuite) TestOrderIndependentLookup() {
	require := require.New(s.T())
	require.NoError(s.b.SetWeight("C", "A", 2))
	g := s.b.Build()

	w1, ok1 := g.Weight("A", "C")
	w2, ok2 := g.Weight("C", "A")
	require.True(ok1 && ok2)
	require.Equal(w1, w2)
	require.True(g.HasEdge("C", "A"))
	require.False(g.HasEdge("A", "A"), "no self pairs")
	require.False(g.HasEdge("A", "B"))
}

func (s *GraphSuite) TestOverwriteKeepsSinglePair() {
	require := require.New(s.T())
	require.NoError(s.b.SetWeight("A", "B", 1))
	require.NoError(s.b.SetWeight("B", "A", 3))
	g := s.b.Build()
	require.Equal(1, g.EdgeCount())
	w, _ := g.Weight("A", "B")
	require.Equal(3.0, w)
}

func (s *GraphSuite) TestEdgesCanonicalOrder() {
	require := require.New(s.T())
	require.NoError(s.b.SetWeight("D", "C", 4))
	require.NoError(s.b.SetWeight("B", "A", 1))
	require.NoError(s.b.SetWeight("D", "A", 3))
	edges := s.b.Build().Edges()
	require.Equal([]network.Edge{
		{A: "A", B: "B", Weight: 1},
		{A: "A", B: "D", Weight: 3},
		{A: "C", B: "D", Weight: 4},
	}, edges)
}

func (s *GraphSuite) TestBuildIsSnapshot() {
	require := require.New(s.T())
	require.NoError(s.b.SetWeight("A", "B", 1))
	g := s.b.Build()
	require.NoError(s.b.SetWeight("A", "C", 1))
	require.Equal(1, g.EdgeCount(), "built graph must not see later writes")
}

func (s *GraphSuite) TestExtend() {
	require := require.New(s.T())
	require.NoError(s.b.SetWeight("A", "C", 1.5))
	g := s.b.Build()

	wide, err := g.Extend([]string{"E", "D", "C", "B", "A"})
	require.NoError(err)
	require.Equal([]string{"E", "D", "C", "B", "A"}, wide.Entities())
	require.Equal(1, wide.EdgeCount())
	w, ok := wide.Weight("C", "A")
	require.True(ok)
	require.Equal(1.5, w)

	_, err = g.Extend([]string{"A", "B", "C"})
	require.ErrorIs(err, network.ErrEntityNotFound)
	_, err = g.Extend([]string{"A", "B", "C", "D", "A"})
	require.ErrorIs(err, network.ErrDuplicateEntity)
}

func (s *GraphSuite) TestRestrictAndEqual() {
	require := require.New(s.T())
	require.NoError(s.b.SetWeight("A", "B", 1))
	require.NoError(s.b.SetWeight("B", "D", 2))
	require.NoError(s.b.SetWeight("C", "D", 5))
	g := s.b.Build()

	sub, err := g.Restrict([]string{"D", "B"})
	require.NoError(err)
	require.Equal([]string{"D", "B"}, sub.Entities())
	require.Equal(1, sub.EdgeCount())
	w, ok := sub.Weight("B", "D")
	require.True(ok)
	require.Equal(2.0, w)

	_, err = g.Restrict([]string{"A", "Q"})
	require.ErrorIs(err, network.ErrEntityNotFound)

	other, err := network.NewBuilder([]string{"D", "C", "B", "A"})
	require.NoError(err)
	require.NoError(other.SetWeight("B", "A", 1))
	require.NoError(other.SetWeight("D", "B", 2))
	require.NoError(other.SetWeight("D", "C", 5+1e-12))
	require.True(g.Equal(other.Build(), 1e-9), "entity order must not matter")
	require.False(g.Equal(sub, 1e-9))
}

func (s *GraphSuite) TestDenseRoundTrip() {
	require := require.New(s.T())
	require.NoError(s.b.SetWeight("A", "C", -0.25))
	require.NoError(s.b.SetWeight("B", "D", 0.75))
	g := s.b.Build()

	m := g.Dense()
	require.NoError(matrix.ValidateSymmetric(m, 0))
	back, err := network.FromDense(g.Entities(), m, network.KeepNonZero)
	require.NoError(err)
	require.True(g.Equal(back, 0))

	all, err := network.FromDense(g.Entities(), m, nil)
	require.NoError(err)
	require.Equal(6, all.EdgeCount())

	_, err = network.FromDense([]string{"A"}, m, nil)
	require.ErrorIs(err, matrix.ErrDimensionMismatch)
}

func (s *GraphSuite) TestConcurrentSetWeight() {
	require := require.New(s.T())
	names := []string{"A", "B", "C", "D"}
	var wg sync.WaitGroup
	for i := range names {
		for j := i + 1; j < len(names); j++ {
			wg.Add(1)
			go func(a, b string) {
				defer wg.Done()
				_ = s.b.SetWeight(a, b, 1)
			}(names[i], names[j])
		}
	}
	wg.Wait()
	require.Equal(6, s.b.Len())
}

func TestGraphSuite(t *testing.T) {
	suite.Run(t, new(GraphSuite))
}

func TestNewBuilderRejectsBadEntities(t *testing.T) {
	_, err := network.NewBuilder([]string{"A", "A"})
	require.ErrorIs(t, err, network.ErrDuplicateEntity)
	_, err = network.NewBuilder([]string{"A", ""})
	require.ErrorIs(t, err, network.ErrEmptyEntity)

	b, err := network.NewBuilder(nil)
	require.NoError(t, err)
	g := b.Build()
	require.Zero(t, g.NumEntities())
	require.Nil(t, g.Dense())
}
