package dbx

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern turns a raw search term into a substring LIKE/ILIKE pattern,
// escaping the metacharacters %, _ and \. Queries using the result must
// declare ESCAPE '\'.
func LikePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
