package service

import (
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
)

// maxSearchResults caps every named-entity search regardless of how many
// rows match.
const maxSearchResults = 10

// searchNamed performs a case-insensitive substring match of term against
// the given column, scoped to the user, ordered shortest match first.
// Equal-length matches keep insertion order (id ascending); the tie-break
// carries no business meaning. An empty term yields an empty result, not a
// full scan.
func (s *Service) searchNamed(userID uint64, table, column, term string) ([]string, error) {
	matches := make([]string, 0)
	if term == "" {
		return matches, nil
	}

	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	sql, args, err := squirrel.
		Select(column).From(table).
		Where(squirrel.Eq{"user_id": userID}).
		Where("LOWER("+column+") LIKE ? ESCAPE '\\'", pattern).
		OrderBy("LENGTH("+column+") ASC", "id ASC").
		Limit(maxSearchResults).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build search sql")
	}

	res := s.db.Raw(sql, args...).Scan(&matches)
	if res.Error != nil {
		return nil, errors.Wrapf(res.Error, "search %s", table)
	}
	return matches, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
