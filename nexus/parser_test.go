package nexus

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TuftsBCB/treeio/newick"
	"github.com/TuftsBCB/treeio/scan"
	"github.com/TuftsBCB/treeio/tree"
)

const birds = "testdata/birds.trees"

func sample(s string) *scan.MemorySource {
	return scan.NewMemorySourceString(s)
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.trees")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// generated returns a NEXUS file with n trees named t0, t1, ...
func generated(n int) string {
	var b strings.Builder
	b.WriteString("#NEXUS\nBegin taxa;\n\tDimensions ntax=3;\n\tTaxlabels A B C;\nEnd;\n")
	b.WriteString("Begin trees;\n\tTranslate 1 A, 2 B, 3 C;\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "\ttree t%d = [&U] ((1:1,2:1):%d,3:%d);\n", i, i, i+1)
	}
	b.WriteString("End;\n")
	return b.String()
}

func names(t *testing.T, trees []*tree.CompactTree) []string {
	t.Helper()
	out := make([]string, len(trees))
	for i, tr := range trees {
		name, ok := tr.Name()
		require.True(t, ok)
		out[i] = name
	}
	return out
}

// formatted renders trees as zero-indexed Newick so that trees from
// different parsers can be compared.
func formatted(t *testing.T, trees []*tree.CompactTree) []string {
	t.Helper()
	out := make([]string, len(trees))
	for i, tr := range trees {
		s, err := newick.FormatCompact(tr, nil, newick.StyleZeroIndexed)
		require.NoError(t, err)
		out[i] = s
	}
	return out
}

func TestReadFile(t *testing.T) {
	trees, labels, err := ReadFile(birds)
	require.NoError(t, err)
	require.Len(t, trees, 5)

	want := []string{"Apteryx", "Bubo", "Corvus", "Dromaius novaehollandiae"}
	if diff := cmp.Diff(want, labels.Labels()); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t,
		[]string{"STATE_0", "STATE_1000", "STATE_2000", "STATE_3000", "STATE_4000"},
		names(t, trees))
	for _, tr := range trees {
		assert.True(t, tr.IsValid())
		assert.Equal(t, 7, tr.Len())
		assert.True(t, tr.IsUltrametric())
		assert.InDelta(t, 2.0, tr.Height(), 1e-9)
	}

	first, err := newick.FormatCompact(trees[0], labels, newick.StyleLabel)
	require.NoError(t, err)
	assert.Equal(t, "((Apteryx:1,Bubo:1):1,(Corvus:0.5,Dromaius_novaehollandiae:0.5):1.5);", first)
}

func TestParserAccessors(t *testing.T) {
	p, err := OpenCompact(birds)
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, ModeEager, p.Mode())
	assert.Equal(t, 4, p.NumLeaves())
	assert.Equal(t, 5, p.NumTrees())
	assert.Equal(t, 5, p.NumTotalTrees())
	assert.True(t, p.Translated())
	assert.Len(t, p.Trees(), 5)
	assert.Equal(t, 4, p.Labels().NumLabels())

	count := 0
	for {
		_, err := p.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, 5, count)

	require.NoError(t, p.Reset())
	tr, err := p.Next()
	require.NoError(t, err)
	name, _ := tr.Name()
	assert.Equal(t, "STATE_0", name)
}

// Integer TRANSLATE keys and literal taxon names give the same trees.
func TestTranslateMatchesLiteralNames(t *testing.T) {
	translated, tlabels, err := ReadFile(birds)
	require.NoError(t, err)
	literal, llabels, err := ReadFile("testdata/birds_names.trees")
	require.NoError(t, err)

	assert.Equal(t, tlabels.Labels(), llabels.Labels())
	if diff := cmp.Diff(formatted(t, translated), formatted(t, literal)); diff != "" {
		t.Errorf("trees differ (-translated +literal):\n%s", diff)
	}
	assert.Equal(t, names(t, translated), names(t, literal))

	p, err := OpenCompact("testdata/birds_names.trees")
	require.NoError(t, err)
	assert.False(t, p.Translated())
}

func TestNtaxMismatch(t *testing.T) {
	input := "#NEXUS\nBegin taxa;\n\tDimensions Ntax=3;\n\tTaxlabels A B;\nEnd;\n" +
		"Begin trees;\n\ttree t = (A,B);\nEnd;\n"
	_, err := NewParser[int, *tree.CompactTree](sample(input), tree.NewCompactBuilder())
	require.Error(t, err)
	assert.True(t, errors.Is(err, scan.ErrInvalidTaxaBlock), "got %v", err)
	assert.Contains(t, err.Error(), "Number of parsed labels (2) did not match ntax value (3).")
}

func TestStructuralErrors(t *testing.T) {
	const taxa = "Begin taxa;\n\tDimensions ntax=2;\n\tTaxlabels A B;\nEnd;\n"
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"no header", "Begin taxa; End;", scan.ErrMissingNexusHeader},
		{"no taxa block", "#NEXUS\nBegin trees;\nEnd;\n", scan.ErrUnexpectedEOF},
		{"unterminated block", "#NEXUS\nBegin data;\nMatrix\n", scan.ErrUnexpectedEOF},
		{"no begin", "#NEXUS\ntaxa;\n", scan.ErrInvalidFormatting},
		{"empty block name", "#NEXUS\nBegin ;\n", scan.ErrInvalidBlockName},
		{"unclosed comment", "#NEXUS\n[never closed\n", scan.ErrUnclosedComment},
		{"no dimensions", "#NEXUS\nBegin taxa;\n\tTaxlabels A B;\nEnd;\n", scan.ErrInvalidTaxaBlock},
		{"bad ntax", "#NEXUS\nBegin taxa;\n\tDimensions ntax=two;\nEnd;\n", scan.ErrInvalidTaxaBlock},
		{"no taxlabels", "#NEXUS\nBegin taxa;\n\tDimensions ntax=2;\nEnd;\n", scan.ErrInvalidTaxaBlock},
		{"duplicate taxa", "#NEXUS\nBegin taxa;\n\tDimensions ntax=2;\n\tTaxlabels A A;\nEnd;\n",
			scan.ErrInvalidTaxaBlock},
		{"no trees block", "#NEXUS\n" + taxa, scan.ErrUnexpectedEOF},
		{"no translate or tree", "#NEXUS\n" + taxa + "Begin trees;\n\tfoo;\nEnd;\n",
			scan.ErrInvalidTreesBlock},
		{"translate separator", "#NEXUS\n" + taxa + "Begin trees;\n\tTranslate 1 A: 2 B;\nEnd;\n",
			scan.ErrInvalidTreesBlock},
		{"translate too short", "#NEXUS\n" + taxa + "Begin trees;\n\tTranslate 1 A;\n\ttree t = (1,2);\nEnd;\n",
			scan.ErrInvalidTranslateCommand},
		{"translate unknown taxon", "#NEXUS\n" + taxa + "Begin trees;\n\tTranslate 1 A, 2 C;\n\ttree t = (1,2);\nEnd;\n",
			scan.ErrInvalidTranslateCommand},
		{"translate out of range", "#NEXUS\n" + taxa + "Begin trees;\n\tTranslate 1 A, 3 B;\n\ttree t = (1,3);\nEnd;\n",
			scan.ErrInvalidTranslateCommand},
		{"tree without equals", "#NEXUS\n" + taxa + "Begin trees;\n\ttree t (A,B);\nEnd;\n",
			scan.ErrInvalidTreesBlock},
		{"bad newick", "#NEXUS\n" + taxa + "Begin trees;\n\ttree t = (A,B,C);\nEnd;\n",
			scan.ErrInvalidNewick},
		{"unresolved index", "#NEXUS\n" + taxa + "Begin trees;\n\tTranslate 1 A, 2 B;\n\ttree t = (1,5);\nEnd;\n",
			scan.ErrUnresolvedLabel},
		{"missing end", "#NEXUS\n" + taxa + "Begin trees;\n\ttree t = (A,B);\n", scan.ErrUnexpectedEOF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser[int, *tree.CompactTree](sample(tt.input), tree.NewCompactBuilder())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestMixedTranslatePrecedence(t *testing.T) {
	input := "#NEXUS\nBegin taxa;\n\tDimensions ntax=3;\n\tTaxlabels A B C;\nEnd;\n" +
		"Begin trees;\n\tTranslate 1 C, b B, a A;\n" +
		"\ttree t = ((1,2),A);\nEnd;\n"
	p, err := NewParser[int, *tree.CompactTree](sample(input), tree.NewCompactBuilder())
	require.NoError(t, err)
	tr, err := p.Next()
	require.NoError(t, err)

	got := make([]int, 0, 3)
	for _, i := range tr.Leaves() {
		l, _ := tr.Vertex(i).Label()
		got = append(got, l)
	}
	// "1" is a key for C, "2" is the second taxon, "A" is a taxon name.
	assert.Equal(t, []int{2, 1, 0}, got)
}

func TestBurnin(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		opts      []Option
		kept      int
		firstKept int
	}{
		{"none", 10, nil, 10, 0},
		{"skip first", 10, []Option{WithSkipFirst(true)}, 9, 1},
		{"count", 10, []Option{WithBurnin(BurninCount(3))}, 7, 3},
		{"skip first and count", 10, []Option{WithSkipFirst(true), WithBurnin(BurninCount(3))}, 6, 4},
		{"fraction floors", 10, []Option{WithBurnin(BurninFraction(0.25))}, 8, 2},
		{"skip first and fraction", 10, []Option{WithSkipFirst(true), WithBurnin(BurninFraction(0.5))}, 5, 5},
		{"count beyond total", 3, []Option{WithBurnin(BurninCount(5))}, 0, 0},
		{"significant count", 200, []Option{WithBurnin(BurninCount(150))}, 50, 150},
		{"significant fraction", 40, []Option{WithSkipFirst(true), WithBurnin(BurninFraction(0.1))}, 36, 4},
	}
	for _, tt := range tests {
		for _, mode := range []Mode{ModeEager, ModeLazy} {
			t.Run(fmt.Sprintf("%s/%s", tt.name, mode), func(t *testing.T) {
				opts := append([]Option{WithMode(mode)}, tt.opts...)
				p, err := NewParser[int, *tree.CompactTree](
					sample(generated(tt.total)), tree.NewCompactBuilder(), opts...)
				require.NoError(t, err)
				assert.Equal(t, tt.total, p.NumTotalTrees())
				assert.Equal(t, tt.kept, p.NumTrees())

				trees, _, err := p.Results()
				require.NoError(t, err)
				require.Len(t, trees, tt.kept)
				if tt.kept > 0 {
					name, _ := trees[0].Name()
					assert.Equal(t, fmt.Sprintf("t%d", tt.firstKept), name)
					name, _ = trees[tt.kept-1].Name()
					assert.Equal(t, fmt.Sprintf("t%d", tt.total-1), name)
				}
			})
		}
	}
}

func TestBurninCount(t *testing.T) {
	assert.Equal(t, 0, Burnin{}.Count(100))
	assert.Equal(t, 7, BurninCount(7).Count(3))
	assert.Equal(t, 0, BurninCount(-2).Count(3))
	assert.Equal(t, 33, BurninFraction(1.0/3).Count(100))
	assert.False(t, BurninCount(99).Significant())
	assert.True(t, BurninCount(100).Significant())
	assert.False(t, BurninFraction(0.049).Significant())
	assert.True(t, BurninFraction(0.05).Significant())
	assert.Equal(t, 10, BurninFraction(1).Count(10))
	assert.Equal(t, 10, BurninFraction(2.5).Count(10))
	assert.Equal(t, 0, BurninFraction(-0.1).Count(10))
	assert.Equal(t, 0, BurninFraction(math.NaN()).Count(10))
}

func TestBurninDiscardsEverything(t *testing.T) {
	for _, mode := range []Mode{ModeEager, ModeLazy} {
		t.Run(mode.String(), func(t *testing.T) {
			p, err := NewParser[int, *tree.CompactTree](
				sample(generated(5)), tree.NewCompactBuilder(),
				WithMode(mode), WithBurnin(BurninFraction(1.5)))
			require.NoError(t, err)
			assert.Equal(t, 5, p.NumTotalTrees())
			assert.Equal(t, 0, p.NumTrees())
			_, err = p.Next()
			assert.Equal(t, io.EOF, err)
		})
	}
}

func TestModeOptions(t *testing.T) {
	assert.Equal(t, "eager", ModeEager.String())
	assert.Equal(t, "lazy", ModeLazy.String())
	assert.Equal(t, ModeEager, newConfig(nil).mode)
	assert.Equal(t, ModeLazy, newConfig([]Option{Lazy()}).mode)
	assert.Equal(t, ModeEager, newConfig([]Option{Lazy(), Eager()}).mode)
	assert.Equal(t, ModeLazy, newConfig([]Option{WithMode(ModeLazy)}).mode)
}

func TestLazyMatchesEager(t *testing.T) {
	opts := []Option{WithSkipFirst(true), WithBurnin(BurninCount(1))}
	eager, err := OpenCompact(birds, append(opts, Eager())...)
	require.NoError(t, err)
	defer eager.Close()
	lazy, err := OpenCompact(birds, append(opts, Lazy())...)
	require.NoError(t, err)
	defer lazy.Close()

	assert.Nil(t, lazy.Trees())
	assert.Equal(t, 3, lazy.NumTrees())

	var fromLazy []*tree.CompactTree
	for {
		tr, err := lazy.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		fromLazy = append(fromLazy, tr)
	}
	assert.Equal(t, formatted(t, eager.Trees()), formatted(t, fromLazy))

	// A lazy parser only iterates again after Reset.
	_, err = lazy.Next()
	assert.Equal(t, io.EOF, err)
	require.NoError(t, lazy.Reset())
	again, _, err := lazy.Results()
	require.NoError(t, err)
	assert.Equal(t, formatted(t, fromLazy), formatted(t, again))
	assert.Equal(t, []string{"STATE_2000", "STATE_3000", "STATE_4000"}, names(t, again))
}

func TestReadStrategies(t *testing.T) {
	want, _, err := ReadFile(birds)
	require.NoError(t, err)

	for _, tt := range []struct {
		name string
		opts []Option
	}{
		{"memory", []Option{WithReadStrategy(InMemory)}},
		{"buffered", []Option{WithReadStrategy(Buffered)}},
		{"auto buffered", []Option{WithAutoThreshold(1)}},
		{"buffered lazy", []Option{WithReadStrategy(Buffered), Lazy()}},
		{"buffered two-pass", []Option{WithReadStrategy(Buffered), WithBurnin(BurninFraction(0.2))}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			p, err := OpenCompact(birds, tt.opts...)
			require.NoError(t, err)
			defer p.Close()
			got, _, err := p.Results()
			require.NoError(t, err)
			assert.Equal(t, formatted(t, want[len(want)-len(got):]), formatted(t, got))
		})
	}
}

func TestUnseekableSource(t *testing.T) {
	input := generated(4)
	unseekable := func() scan.Source {
		return scan.NewBufferedSource(io.MultiReader(strings.NewReader(input)), scan.MinWindow)
	}

	p, err := NewParser[int, *tree.CompactTree](unseekable(), tree.NewCompactBuilder())
	require.NoError(t, err, "one-pass eager parsing never seeks")
	assert.Len(t, p.Trees(), 4)

	_, err = NewParser[int, *tree.CompactTree](unseekable(), tree.NewCompactBuilder(), Lazy())
	require.Error(t, err)
	assert.True(t, errors.Is(err, scan.ErrIO), "got %v", err)
}

func TestLazyTruncated(t *testing.T) {
	input := strings.Replace(generated(3), "\ttree t2 = [&U] ((1:1,2:1):2,3:3);\n", "\ttree t2 = [&U] ((1:1,2", 1)
	input = strings.TrimSuffix(input, "End;\n")
	_, err := NewParser[int, *tree.CompactTree](sample(input), tree.NewCompactBuilder(), Lazy())
	require.Error(t, err)
	assert.True(t, errors.Is(err, scan.ErrUnexpectedEOF), "got %v", err)
}

func TestAnnotations(t *testing.T) {
	p, err := OpenCompact("testdata/annotated.trees", WithAnnotations(true))
	require.NoError(t, err)
	defer p.Close()

	tr, err := p.Next()
	require.NoError(t, err)
	as := tr.Annotations()
	require.NotNil(t, as)
	assert.Equal(t, []string{"posterior", "rate"}, as.Keys())
	rate, ok := as.Get("rate", 1)
	require.True(t, ok)
	assert.Equal(t, 0.25, rate.Float)
	post, ok := as.Get("posterior", 2)
	require.True(t, ok)
	assert.Equal(t, 0.97, post.Float)
	one, _ := as.Get("rate", 3)
	assert.Equal(t, tree.IntValue(1), one)

	plain, err := OpenCompact("testdata/annotated.trees")
	require.NoError(t, err)
	defer plain.Close()
	tr, err = plain.Next()
	require.NoError(t, err)
	assert.Nil(t, tr.Annotations())
}

func TestSimpleTrees(t *testing.T) {
	p, err := OpenSimple(birds, WithBurnin(BurninCount(4)))
	require.NoError(t, err)
	defer p.Close()

	trees, labels, err := p.Results()
	require.NoError(t, err)
	require.Len(t, trees, 1)
	assert.Equal(t, 4, labels.NumLabels())
	assert.Equal(t,
		"((Bubo:1,Apteryx:1):1,(Dromaius_novaehollandiae:0.5,Corvus:0.5):1.5);",
		newick.FormatSimple(trees[0]))
}

func TestOpenMissingFile(t *testing.T) {
	_, err := OpenCompact("testdata/missing.trees")
	assert.True(t, errors.Is(err, scan.ErrIO))
}

func TestParseBlock(t *testing.T) {
	assert.Equal(t, BlockTaxa, ParseBlock("TAXA"))
	assert.Equal(t, BlockTrees, ParseBlock(" trees "))
	assert.Equal(t, BlockAssumptions, ParseBlock("Assumptions"))
	assert.Equal(t, BlockUnknown, ParseBlock("mrbayes"))
	assert.Equal(t, "CHARACTERS", BlockCharacters.String())
	assert.Equal(t, "UNKNOWN", BlockUnknown.String())
}

func TestParseReadStrategy(t *testing.T) {
	for _, s := range []ReadStrategy{Automatic, InMemory, Buffered} {
		got, err := ParseReadStrategy(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseReadStrategy("mmap")
	assert.Error(t, err)
}
