package usecase

import (
	"testing"

	"github.com/eirinkan/Desire-Hunter/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDesire(t *testing.T) {
	p := NewQueryPreprocessor()

	testCases := []struct {
		name    string
		desire  string
		want    string
		wantErr error
	}{
		{name: "keeps simple desire", desire: "集中力を高めたい", want: "集中力を高めたい"},
		{name: "trims surrounding whitespace", desire: "  quiet keyboard \n", want: "quiet keyboard"},
		{name: "collapses inner whitespace", desire: "quiet\t\tkeyboard  for   office", want: "quiet keyboard for office"},
		{name: "collapses full-width spaces", desire: "静かな　キーボード", want: "静かな キーボード"},
		{name: "rejects empty desire", desire: "", wantErr: domain.ErrInvalidDesire},
		{name: "rejects blank desire", desire: " \t\n　", wantErr: domain.ErrInvalidDesire},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := p.NormalizeDesire(tc.desire)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPrepareQueries(t *testing.T) {
	p := NewQueryPreprocessor()

	t.Run("preserves order and cleans text", func(t *testing.T) {
		queries := []domain.TranslatedQuery{
			{Language: "EN", Query: "  focus   supplement "},
			{Language: "ja", Query: "集中力　サプリ"},
		}

		got := p.PrepareQueries(queries, "集中力を高めたい")

		require.Len(t, got, 2)
		assert.Equal(t, "en", got[0].Language)
		assert.Equal(t, "focus supplement", got[0].Query)
		assert.Equal(t, "ja", got[1].Language)
		assert.Equal(t, "集中力 サプリ", got[1].Query)
	})

	t.Run("falls back to desire with product keywords", func(t *testing.T) {
		queries := []domain.TranslatedQuery{
			{Language: "ja", Query: "   "},
			{Language: "xx", Query: ""},
		}

		got := p.PrepareQueries(queries, "集中力を高めたい")

		require.Len(t, got, 2)
		assert.Equal(t, "集中力を高めたい 購入 製品 ショップ", got[0].Query)
		assert.Equal(t, "集中力を高めたい buy product", got[1].Query)
	})

	t.Run("labels blank language as unknown", func(t *testing.T) {
		got := p.PrepareQueries([]domain.TranslatedQuery{{Query: "desk lamp"}}, "lamp")

		require.Len(t, got, 1)
		assert.Equal(t, "unknown", got[0].Language)
	})

	t.Run("empty input stays empty", func(t *testing.T) {
		got := p.PrepareQueries(nil, "lamp")
		assert.Empty(t, got)
	})
}

func TestCacheKey(t *testing.T) {
	p := NewQueryPreprocessor()

	assert.Equal(t, "hunt:quiet keyboard!", p.CacheKey("Quiet Keyboard!"))
	assert.Equal(t, p.CacheKey("quiet  keyboard"), p.CacheKey("QUIET keyboard"))
	assert.Equal(t, "hunt:集中力を高めたい。", p.CacheKey("　集中力を高めたい。"))
}

func TestCacheKey_KeepsPunctuation(t *testing.T) {
	p := NewQueryPreprocessor()

	keys := map[string]string{}
	for _, desire := range []string{"C++ books", "C# books", "C books", "C, books"} {
		key := p.CacheKey(desire)
		if other, dup := keys[key]; dup {
			t.Errorf("CacheKey(%q) = CacheKey(%q) = %q", desire, other, key)
		}
		keys[key] = desire
	}
}

func TestBuildQueryForLanguage(t *testing.T) {
	testCases := []struct {
		language string
		want     string
	}{
		{"en", "desk lamp buy product shop"},
		{"de", "desk lamp kaufen produkt shop"},
		{"fr", "desk lamp acheter produit boutique"},
		{"pt", "desk lamp buy product"},
	}

	for _, tc := range testCases {
		t.Run(tc.language, func(t *testing.T) {
			assert.Equal(t, tc.want, BuildQueryForLanguage("desk  lamp", tc.language))
		})
	}
}
