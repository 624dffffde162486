package storage

import "strings"

// LikeEscape is the ESCAPE clause matching ContainsPattern
const LikeEscape = `ESCAPE '\'`

var likeReplacer = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern turns s into a LIKE pattern matching any value that
// contains s literally. Queries must use it together with LikeEscape.
func ContainsPattern(s string) string {
	return "%" + likeReplacer.Replace(s) + "%"
}
