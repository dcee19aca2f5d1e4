package edgelist_test

import (
	"bytes"
	"compress/gzip"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/netfuse/edgelist"
	"github.com/katalvlaran/netfuse/network"
)

func sample(t *testing.T) *network.Graph {
	t.Helper()
	b, err := network.NewBuilder([]string{"zeta", "alpha", "mid"})
	require.NoError(t, err)
	require.NoError(t, b.SetWeight("zeta", "alpha", -0.25))
	require.NoError(t, b.SetWeight("mid", "zeta", 0.3))
	require.NoError(t, b.SetWeight("alpha", "mid", 1e-17))

	return b.Build()
}

func gunzip(t *testing.T, data []byte) string {
	t.Helper()
	zr, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	out, err := io.ReadAll(zr)
	require.NoError(t, err)

	return string(out)
}

func TestWriteLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, edgelist.Write(&buf, sample(t)))
	lines := strings.Split(strings.TrimSpace(gunzip(t, buf.Bytes())), "\n")
	assert.Equal(t, []string{
		"interaction,e1,e2,intensity",
		"alpha<->mid,alpha,mid,1e-17",
		"alpha<->zeta,alpha,zeta,-0.25",
		"mid<->zeta,mid,zeta,0.3",
	}, lines)
}

func TestWriteScaled(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, edgelist.Write(&buf, sample(t), edgelist.WithScaled(true)))
	g, err := edgelist.Read(&buf)
	require.NoError(t, err)
	w, _ := g.Weight("alpha", "zeta")
	assert.InDelta(t, 0.25/0.3, w, 1e-15)
	w, _ = g.Weight("mid", "zeta")
	assert.Equal(t, 1.0, w)
}

func TestRoundTripFile(t *testing.T) {
	g := sample(t)
	path := edgelist.Path(t.TempDir(), "set one", "pearson")
	assert.Equal(t, "pearson.csv.gz", filepath.Base(path))
	assert.Equal(t, "set one", filepath.Base(filepath.Dir(path)))
	assert.False(t, edgelist.Exists(path))

	require.NoError(t, edgelist.WriteFile(path, g))
	require.True(t, edgelist.Exists(path))
	back, err := edgelist.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, g.Equal(back, 0))
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, back.Entities())
}

func TestReadInteractionOnly(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("interaction,intensity\na--b,2\nb--c,3.5\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	g, err := edgelist.Read(&buf, edgelist.WithSymbol("--"))
	require.NoError(t, err)
	assert.Equal(t, 2, g.EdgeCount())
	w, ok := g.Weight("c", "b")
	require.True(t, ok)
	assert.Equal(t, 3.5, w)
}

func TestReadErrors(t *testing.T) {
	_, err := edgelist.Read(strings.NewReader("not gzip"))
	assert.ErrorIs(t, err, edgelist.ErrFormat)

	for _, body := range []string{
		"e1,e2\na,b\n",
		"interaction,e1,e2,intensity\na<->b,a,b,high\n",
		"interaction,e1,e2,intensity\na<->a,a,a,1\n",
		"interaction,intensity\nab,1\n",
	} {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		_, err := zw.Write([]byte(body))
		require.NoError(t, err)
		require.NoError(t, zw.Close())
		_, err = edgelist.Read(&buf)
		assert.ErrorIs(t, err, edgelist.ErrFormat, body)
	}
}

func TestCheckName(t *testing.T) {
	for _, ok := range []string{"pearson", "set one", "HALLMARK_TNFA"} {
		assert.NoError(t, edgelist.CheckName(ok), ok)
	}
	for _, bad := range []string{"", ".", "..", "../up", "a/b", `a\b`, "nul\x00"} {
		assert.ErrorIs(t, edgelist.CheckName(bad), edgelist.ErrUnsafeName, bad)
	}
}
