package ingest

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrUnsafeQuery - запрос источника не является read-only.
var ErrUnsafeQuery = errors.New("query is not read-only")

// Сравнение только читает источники, поэтому любая изменяющая
// или служебная команда отклоняется до подключения к базе.
var forbiddenKeywords = map[string]bool{
	"INSERT": true, "UPDATE": true, "DELETE": true, "TRUNCATE": true, "MERGE": true,
	"DROP": true, "CREATE": true, "ALTER": true, "RENAME": true,
	"GRANT": true, "REVOKE": true,
	"EXECUTE": true, "EXEC": true, "CALL": true,
	"PRAGMA": true, "ATTACH": true, "DETACH": true, "VACUUM": true,
	"BEGIN": true, "COMMIT": true, "ROLLBACK": true,
	"INTO": true,
}

// ValidateQuery проверяет пользовательский запрос:
//   - начинается с SELECT или WITH
//   - не содержит запрещенных ключевых слов вне строковых литералов
//   - одна команда (допускается завершающая ;)
//   - без комментариев -- и /* */
func ValidateQuery(query string) error {
	q := strings.TrimSpace(query)
	q = strings.TrimSpace(strings.TrimSuffix(q, ";"))
	if q == "" {
		return fmt.Errorf("%w: empty query", ErrUnsafeQuery)
	}

	words, err := queryWords(q)
	if err != nil {
		return err
	}
	if len(words) == 0 || (words[0] != "SELECT" && words[0] != "WITH") {
		first := "UNKNOWN"
		if len(words) > 0 {
			first = words[0]
		}
		return fmt.Errorf("%w: only SELECT and WITH queries are allowed, got %s", ErrUnsafeQuery, first)
	}
	for _, w := range words {
		if forbiddenKeywords[w] {
			return fmt.Errorf("%w: forbidden keyword %s", ErrUnsafeQuery, w)
		}
	}
	return nil
}

// queryWords возвращает слова запроса в верхнем регистре, пропуская
// строковые литералы и quoted-идентификаторы
func queryWords(q string) ([]string, error) {
	var words []string
	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			words = append(words, strings.ToUpper(word.String()))
			word.Reset()
		}
	}

	runes := []rune(q)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\'' || r == '"' || r == '`' || r == '[':
			flush()
			end := r
			if r == '[' {
				end = ']'
			}
			j := i + 1
			for j < len(runes) && runes[j] != end {
				j++
			}
			if j == len(runes) {
				return nil, fmt.Errorf("%w: unterminated %c", ErrUnsafeQuery, r)
			}
			i = j
		case r == ';':
			return nil, fmt.Errorf("%w: multiple statements", ErrUnsafeQuery)
		case r == '-' && i+1 < len(runes) && runes[i+1] == '-',
			r == '/' && i+1 < len(runes) && runes[i+1] == '*',
			r == '*' && i+1 < len(runes) && runes[i+1] == '/':
			return nil, fmt.Errorf("%w: comments are not allowed", ErrUnsafeQuery)
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			word.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return words, nil
}
