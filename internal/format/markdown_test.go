package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeReservedCharacters(t *testing.T) {
	escaped := Escape(ReservedCharacters)

	// Каждый зарезервированный символ должен получить свой слэш
	require.Len(t, escaped, len(ReservedCharacters)*2)
	for i, r := range ReservedCharacters {
		assert.Equal(t, byte('\\'), escaped[i*2])
		assert.Equal(t, byte(r), escaped[i*2+1], "character %q", r)
	}
}

func TestEscapeNoUnescapedReservedLeft(t *testing.T) {
	inputs := []string{
		"09:00-10:30",
		"Математика (лекция)",
		"лит. А, каб. 2-13",
		"a_b*c[d]e(f)g~h`i>j#k+l-m=n|o{p}q.r!s",
	}

	for _, input := range inputs {
		escaped := Escape(input)
		for i := 0; i < len(escaped); i++ {
			if strings.IndexByte(ReservedCharacters, escaped[i]) < 0 {
				continue
			}
			require.Greater(t, i, 0, "reserved %q unescaped in %q", escaped[i], escaped)
			assert.Equal(t, byte('\\'), escaped[i-1],
				"reserved %q unescaped in %q", escaped[i], escaped)
		}
	}
}

func TestEscapeStripsWhitespaceArtifacts(t *testing.T) {
	assert.Equal(t, "ab", Escape("a\nb"))
	assert.Equal(t, "ab", Escape("a\r\nb"))
	assert.Equal(t, "ab", Escape("a"+strings.Repeat(" ", 20)+"b"))
	assert.Equal(t, "ab", Escape("a  b"))
	// Одиночный пробел остаётся
	assert.Equal(t, "a b", Escape("a b"))
}

func TestCompareKeyStripsEverything(t *testing.T) {
	key := CompareKey(Escape("Математика (лекция) 09:00-10:30"))

	assert.NotContains(t, key, "\\")
	assert.NotContains(t, key, " ")
	for _, r := range ReservedCharacters {
		assert.NotContains(t, key, string(r))
	}
	assert.Equal(t, "Математикалекция09:0010:30", key)
}

func TestCompareKeyEscapeIdempotence(t *testing.T) {
	inputs := []string{
		"Математика, каб. 2-13",
		"лит. А, 09:00-10:30 Иванов И.И.",
		ReservedCharacters,
	}

	for _, input := range inputs {
		once := CompareKey(Escape(input))
		twice := CompareKey(Escape(Escape(input)))
		assert.Equal(t, once, twice, "input %q", input)
	}
}

func TestCompareKeyIgnoresUpdatedFooter(t *testing.T) {
	a := "🟢 *Понедельник*\n*09:00* Математика\n\n_Обновлено: 01\\.09\\.2025 00:01:02_"
	b := "🟢 *Понедельник*\n*09:00* Математика\n\n_Обновлено: 02\\.09\\.2025 10:11:12_"

	assert.Equal(t, CompareKey(a), CompareKey(b))

	// Изменение самого расписания всё ещё видно
	c := "🟢 *Понедельник*\n*09:00* Физика\n\n_Обновлено: 01\\.09\\.2025 00:01:02_"
	assert.NotEqual(t, CompareKey(a), CompareKey(c))
}

func TestCompareKeyCosmeticDifferences(t *testing.T) {
	a := "*09:00* Математика каб\\. 2\\-13"
	b := "09:00 Математика  каб. 213"

	assert.Equal(t, CompareKey(a), CompareKey(b))
}
