package diet

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/KaramelBytes/dtypediet/internal/frame"
	"github.com/KaramelBytes/dtypediet/internal/sample"
)

func repeatInt(v int64, n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func byteOptions() Options {
	opt := DefaultOptions()
	opt.Unit = Byte
	return opt
}

func TestCandidates(t *testing.T) {
	assert.Equal(t, []frame.Kind{frame.Int32, frame.Int16, frame.Int8}, Candidates(frame.Int64))
	assert.Equal(t, []frame.Kind{frame.Float32, frame.Float16}, Candidates(frame.Float64))
	assert.Equal(t, []frame.Kind{frame.Category}, Candidates(frame.Object))
	assert.Nil(t, Candidates(frame.Int8))
	assert.Nil(t, Candidates(frame.Category))

	c := Candidates(frame.Int64)
	c[0] = frame.Object
	assert.Equal(t, frame.Int32, Candidates(frame.Int64)[0], "table must not be mutable through the result")

	assert.Equal(t, []frame.Kind{frame.Int64, frame.Float64, frame.Object}, SourceKinds())
}

func TestEvaluateSmallInts(t *testing.T) {
	col := frame.NewInt64("ones", repeatInt(1, 3))
	for _, k := range []frame.Kind{frame.Int32, frame.Int16, frame.Int8} {
		res, err := Evaluate(col, k)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Different, k.String())
		assert.Equal(t, k, res.Kind)
		assert.Equal(t, "ones", res.Column)
		assert.Equal(t, int64(3*k.Width()), res.Bytes)
	}
}

func TestEvaluateWideInts(t *testing.T) {
	col := frame.NewInt64("wide", repeatInt(65536, 3))
	res, err := Evaluate(col, frame.Int32)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Different)

	res, err = Evaluate(col, frame.Int16)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Different)

	res, err = Evaluate(col, frame.Int8)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Different)
}

func TestEvaluateConversionErrorPropagates(t *testing.T) {
	col := frame.NewObject("words", []string{"hello"})
	_, err := Evaluate(col, frame.Int32)
	assert.ErrorIs(t, err, frame.ErrConversion)
}

func TestBestFitPrefersNarrowest(t *testing.T) {
	res, err := BestFit(frame.NewInt64("a", repeatInt(0, 10)))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, frame.Int8, res.Kind)

	res, err = BestFit(frame.NewInt64("c", repeatInt(65536, 10)))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, frame.Int32, res.Kind)

	res, err = BestFit(frame.NewInt64("big", []int64{math.MaxInt64}))
	require.NoError(t, err)
	assert.Nil(t, res)

	res, err = BestFit(frame.NewInt16("narrow", []int16{1}))
	require.NoError(t, err)
	assert.Nil(t, res, "kinds without candidates report nothing")
}

func TestApproxIsOptIn(t *testing.T) {
	col := frame.NewFloat64("f", []float64{0.1, 0.2, 0.3})

	res, err := BestFit(col)
	require.NoError(t, err)
	assert.Nil(t, res, "exact mode rejects lossy float narrowing")

	opt := DefaultOptions()
	opt.Approx = true
	res, err = NewSelector(opt).BestFit(col)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, frame.Float32, res.Kind)

	_, err = EvaluateApprox(col, frame.Float32, Tolerance{Rel: -1})
	assert.Error(t, err)
}

func TestParseUnit(t *testing.T) {
	for in, want := range map[string]Unit{"byte": Byte, "B": Byte, "kb": KB, "MB": MB, "gb": GB} {
		got, err := ParseUnit(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseUnit("TB")
	assert.ErrorIs(t, err, ErrUnknownUnit)
	assert.Equal(t, float64(1<<20), MB.Divisor())
	assert.InDelta(t, 2.0, KB.Scale(2048), 1e-12)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "2048", FormatAmount(2048, Byte))
	assert.Equal(t, "1.5", FormatAmount(KB.Scale(1536), KB))
	assert.Equal(t, "0.3333", FormatAmount(1.0/3, MB))
	assert.Equal(t, "1.235e+04", FormatAmount(12346, GB))
}

func TestNewSelectorDefaultsLogger(t *testing.T) {
	s := NewSelector(Options{})
	require.NotNil(t, s.log)
	assert.False(t, s.log.Core().Enabled(zapcore.ErrorLevel))
}

func TestReportScenario(t *testing.T) {
	ds := sample.Dataset(sample.DefaultRows)
	rep, err := BuildReport(ds, byteOptions())
	require.NoError(t, err)
	require.Len(t, rep.Columns, 7)
	assert.Equal(t, ds.Names(), columnNames(rep))
	assert.Equal(t, 100, rep.Rows)
	assert.NotEmpty(t, rep.ID)

	want := map[string]frame.Kind{
		"a":     frame.Int8,
		"b":     frame.Int16,
		"c":     frame.Int32,
		"d":     frame.Float16,
		"e":     frame.Float32,
		"str_a": frame.Category,
	}
	for name, kind := range want {
		row, ok := rep.Row(name)
		require.True(t, ok, name)
		require.NotNil(t, row.ProposedKind, name)
		assert.Equal(t, kind, *row.ProposedKind, name)
	}

	a, _ := rep.Row("a")
	assert.Equal(t, int64(800), a.CurrentBytes)
	assert.Equal(t, int64(100), *a.ProposedBytes)
	assert.Equal(t, int64(700), *a.ImprovementBytes)
	pct, ok := a.ImprovementPct()
	require.True(t, ok)
	assert.InDelta(t, 87.5, pct, 1e-9)

	strA, _ := rep.Row("str_a")
	assert.Equal(t, int64(2100), strA.CurrentBytes)
	assert.Equal(t, int64(121), *strA.ProposedBytes)

	strB, _ := rep.Row("str_b")
	assert.False(t, strB.HasProposal(), "high-cardinality text is not smaller as categorical")
	assert.Nil(t, strB.ProposedBytes)
	assert.Nil(t, strB.ImprovementBytes)
	_, ok = strB.ImprovementPct()
	assert.False(t, ok)

	tot := rep.Totals()
	assert.Equal(t, ds.MemoryUsage(), tot.CurrentBytes)
	assert.True(t, tot.SavedBytes > 0)
}

func TestReportMonotonicAndPaired(t *testing.T) {
	rep, err := BuildReport(sample.Dataset(37), DefaultOptions())
	require.NoError(t, err)
	for _, row := range rep.Columns {
		set := []bool{row.ProposedKind != nil, row.ProposedBytes != nil, row.ImprovementBytes != nil}
		assert.Equal(t, set[0], set[1], row.Column)
		assert.Equal(t, set[0], set[2], row.Column)
		if row.HasProposal() {
			assert.Less(t, *row.ProposedBytes, row.CurrentBytes, row.Column)
			assert.Equal(t, row.CurrentBytes-*row.ProposedBytes, *row.ImprovementBytes)
		}
	}
}

func TestReportIdempotent(t *testing.T) {
	ds := sample.Dataset(sample.DefaultRows)
	first, err := BuildReport(ds, byteOptions())
	require.NoError(t, err)
	second, err := BuildReport(ds, byteOptions())
	require.NoError(t, err)
	assert.Equal(t, first.Columns, second.Columns)
}

func TestOptimize(t *testing.T) {
	ds := sample.Dataset(sample.DefaultRows)
	rep, err := BuildReport(ds, byteOptions())
	require.NoError(t, err)

	out, err := Optimize(ds, rep)
	require.NoError(t, err)
	assert.Less(t, out.MemoryUsage(), ds.MemoryUsage())
	assert.Equal(t, ds.Names(), out.Names())

	for _, row := range rep.Columns {
		orig, _ := ds.Column(row.Column)
		conv, _ := out.Column(row.Column)
		assert.Equal(t, row.CurrentKind, orig.Kind(), "input dataset must be untouched")
		if row.ProposedKind != nil {
			assert.Equal(t, *row.ProposedKind, conv.Kind())
		} else {
			assert.Equal(t, orig.Kind(), conv.Kind())
		}
		for i := 0; i < orig.Len(); i++ {
			require.True(t, frame.Equal(orig.Value(i), conv.Value(i)), "%s[%d]", row.Column, i)
		}
	}
}

func TestOptimizeWithoutProposalsIsIdentity(t *testing.T) {
	ds, err := frame.NewDataset(
		frame.NewObject("s", []string{"1", "2", "3"}),
		frame.NewInt8("n", []int8{1, 2, 3}),
	)
	require.NoError(t, err)
	rep, err := BuildReport(ds, DefaultOptions())
	require.NoError(t, err)
	require.Empty(t, rep.Proposals())

	out, err := Optimize(ds, rep)
	require.NoError(t, err)
	assert.True(t, frame.EqualDatasets(ds, out))
}

func TestOptimizeUnknownColumn(t *testing.T) {
	ds := sample.Dataset(3)
	rep := &Report{Columns: []Row{{Column: "missing"}}}
	_, err := Optimize(ds, rep)
	assert.ErrorIs(t, err, frame.ErrColumnNotFound)
}

func TestRenderMarkdownAndTable(t *testing.T) {
	opt := byteOptions()
	opt.Source = "demo"
	rep, err := BuildReport(sample.Dataset(sample.DefaultRows), opt)
	require.NoError(t, err)

	md := rep.Markdown()
	assert.Contains(t, md, "[DTYPE REPORT]")
	assert.Contains(t, md, "Source: demo")
	assert.Contains(t, md, "| Column | Current dtype | Proposed dtype | Current Memory (byte) |")
	assert.Contains(t, md, "| a | int64 | int8 | 800 | 100 | 700 | 87.5 |")
	assert.Contains(t, md, "| str_b | object | - | 1790 | - | - | - |")
	assert.Contains(t, md, "[TOTALS]")

	tbl := rep.Table()
	lines := strings.Split(strings.TrimSpace(tbl), "\n")
	assert.Len(t, lines, 8)
	assert.Contains(t, lines[6], "category")
}

func TestEncodeJSONAndYAML(t *testing.T) {
	rep, err := BuildReport(sample.Dataset(10), byteOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, rep.Encode(&buf, FormatJSON))
	var decoded struct {
		Unit    string `json:"unit"`
		Columns []struct {
			Column       string  `json:"column"`
			CurrentKind  string  `json:"current_kind"`
			ProposedKind *string `json:"proposed_kind"`
		} `json:"columns"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "byte", decoded.Unit)
	require.Len(t, decoded.Columns, 7)
	assert.Equal(t, "int64", decoded.Columns[0].CurrentKind)
	require.NotNil(t, decoded.Columns[0].ProposedKind)
	assert.Equal(t, "int8", *decoded.Columns[0].ProposedKind)
	assert.Nil(t, decoded.Columns[6].ProposedKind)

	buf.Reset()
	require.NoError(t, rep.Encode(&buf, FormatYAML))
	assert.Contains(t, buf.String(), "proposed_kind: int8")
	assert.Contains(t, buf.String(), "current_kind: object")

	assert.ErrorIs(t, rep.Encode(&buf, Format("xml")), ErrUnknownFormat)
	_, err = ParseFormat("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func columnNames(rep *Report) []string {
	out := make([]string, len(rep.Columns))
	for i, r := range rep.Columns {
		out[i] = r.Column
	}
	return out
}
