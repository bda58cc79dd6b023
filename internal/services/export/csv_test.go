package export

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/wordbook/internal/models"
)

func strPtr(s string) *string { return &s }

var created = time.Date(2025, 3, 14, 9, 26, 53, 589000000, time.UTC)

func TestToCSV_RunRow(t *testing.T) {
	words := []models.Word{{
		ID:      "11111111-1111-1111-1111-111111111111",
		UserID:  "22222222-2222-2222-2222-222222222222",
		Word:    "run",
		Meaning: strPtr("koşmak"),
		Examples: models.Examples{
			models.StructuredExample{Sentence: "I run daily.", Translation: "Her gün koşarım."},
		},
		CreatedAt: created,
	}}

	got := ToCSV(words)

	want := "id,user_id,word,meaning,examples,notes,created_at\n" +
		`11111111-1111-1111-1111-111111111111,22222222-2222-2222-2222-222222222222,run,koşmak,` +
		`"[{""sentence"":""I run daily."",""translation"":""Her gün koşarım.""}]",,2025-03-14T09:26:53.589Z`
	assert.Equal(t, want, got)
}

func TestToCSV_Quoting(t *testing.T) {
	tests := []struct {
		name string
		word models.Word
		want string
	}{
		{
			name: "запятая в значении",
			word: models.Word{ID: "1", UserID: "u", Word: "well", Meaning: strPtr("iyi, güzel"), CreatedAt: created},
			want: `1,u,well,"iyi, güzel",,,2025-03-14T09:26:53.589Z`,
		},
		{
			name: "кавычки и перевод строки в заметке",
			word: models.Word{ID: "1", UserID: "u", Word: "say", Notes: strPtr("he said \"hi\"\nthen left"), CreatedAt: created},
			want: "1,u,say,,,\"he said \"\"hi\"\"\nthen left\",2025-03-14T09:26:53.589Z",
		},
		{
			name: "старые примеры строками и пустой массив",
			word: models.Word{ID: "1", UserID: "u", Word: "go", Examples: models.Examples{models.LegacyExample("Let's go")}, CreatedAt: created},
			want: `1,u,go,,"[""Let's go""]",,2025-03-14T09:26:53.589Z`,
		},
		{
			name: "пустой массив примеров",
			word: models.Word{ID: "1", UserID: "u", Word: "go", Examples: models.Examples{}, CreatedAt: created},
			want: `1,u,go,,"[]",,2025-03-14T09:26:53.589Z`,
		},
		{
			name: "html не экранируется",
			word: models.Word{ID: "1", UserID: "u", Word: "lt", Examples: models.Examples{models.StructuredExample{Sentence: "a < b & c"}}, CreatedAt: created},
			want: `1,u,lt,,"[{""sentence"":""a < b & c"",""translation"":""""}]",,2025-03-14T09:26:53.589Z`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToCSV([]models.Word{tt.word})
			lines := strings.SplitN(got, "\n", 2)
			require.Len(t, lines, 2)
			assert.Equal(t, csvHeader, lines[0])
			assert.Equal(t, tt.want, lines[1])
		})
	}
}

func TestToCSV_Empty(t *testing.T) {
	assert.Equal(t, csvHeader, ToCSV(nil))
}

func TestToCSV_NonUTCTimestamp(t *testing.T) {
	loc := time.FixedZone("TRT", 3*60*60)
	w := models.Word{ID: "1", UserID: "u", Word: "x", CreatedAt: time.Date(2025, 1, 1, 3, 0, 0, 0, loc)}
	assert.True(t, strings.HasSuffix(ToCSV([]models.Word{w}), ",2025-01-01T00:00:00Z"))
}

func TestToCSV_RoundTrip(t *testing.T) {
	words := []models.Word{
		{
			ID: "a", UserID: "u", Word: "run", Meaning: strPtr("koşmak"),
			Examples: models.Examples{
				models.StructuredExample{Sentence: `She said "run, now!"`, Translation: "Koş, dedi"},
				models.LegacyExample("plain old example"),
			},
			Notes:     strPtr("line one\nline two"),
			CreatedAt: created,
		},
		{ID: "b", UserID: "u", Word: "walk", CreatedAt: created.Add(time.Second)},
	}

	r := csv.NewReader(strings.NewReader(ToCSV(words)))
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(words)+1)
	assert.Equal(t, strings.Split(csvHeader, ","), records[0])

	for i, w := range words {
		rec := records[i+1]
		assert.Equal(t, w.ID, rec[0])
		assert.Equal(t, w.UserID, rec[1])
		assert.Equal(t, w.Word, rec[2])
		assert.Equal(t, deref(w.Meaning), rec[3])
		assert.Equal(t, deref(w.Notes), rec[5])
		assert.Equal(t, w.CreatedAt.Format(time.RFC3339Nano), rec[6])

		if w.Examples == nil {
			assert.Empty(t, rec[4])
			continue
		}
		var parsed models.Examples
		require.NoError(t, parsed.UnmarshalJSON([]byte(rec[4])))
		assert.Equal(t, w.Examples, parsed)
	}
}
