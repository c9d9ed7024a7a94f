package dataset

import (
	"sort"
	"strconv"
	"strings"
)

type mergeGroup struct {
	first    row
	ratings  float64
	rated    int
	votes    int64
	sources  map[string]struct{}
	position int
}

// mergeRows collapses rows describing the same film across sources. Rows
// group on IMDb id (or the merge form of the title when the id is blank)
// plus release year, in first-appearance order. Vote averages are averaged,
// vote counts summed, and every other field takes the first non-empty value.
func mergeRows(rows []row) []row {
	groups := make(map[string]*mergeGroup, len(rows))
	order := make([]*mergeGroup, 0, len(rows))

	for _, r := range rows {
		key := groupKey(r)
		g, ok := groups[key]
		if !ok {
			g = &mergeGroup{first: r, sources: map[string]struct{}{}, position: len(order)}
			groups[key] = g
			order = append(order, g)
		} else {
			fillMissing(&g.first, r)
		}
		g.ratings += r.movie.VoteAverage
		g.rated++
		g.votes += r.movie.VoteCount
		if r.movie.Source != "" {
			g.sources[r.movie.Source] = struct{}{}
		}
	}

	out := make([]row, 0, len(order))
	for _, g := range order {
		merged := g.first
		merged.movie.VoteAverage = g.ratings / float64(g.rated)
		merged.movie.VoteCount = g.votes
		merged.movie.Source = joinSources(g.sources)
		out = append(out, merged)
	}
	return out
}

func groupKey(r row) string {
	id := strings.TrimSpace(r.movie.IMDbID)
	if id == "" {
		id = "title:" + mergeTitle(r.movie.Title)
	}
	return id + "|" + strconv.Itoa(r.year)
}

func fillMissing(dst *row, src row) {
	d, s := &dst.movie, src.movie
	if d.ID == 0 && dst.key == "" {
		d.ID = s.ID
		dst.key = src.key
	}
	fillString(&d.Title, s.Title)
	fillString(&d.IMDbID, s.IMDbID)
	fillString(&d.PosterPath, s.PosterPath)
	fillString(&d.Overview, s.Overview)
	fillString(&d.Genres, s.Genres)
	fillString(&d.OriginalLanguage, s.OriginalLanguage)
	fillString(&d.ReleaseDate, s.ReleaseDate)
	if d.Runtime == 0 {
		d.Runtime = s.Runtime
	}
	if d.Popularity == 0 {
		d.Popularity = s.Popularity
	}
}

func fillString(dst *string, value string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = value
	}
}

func joinSources(set map[string]struct{}) string {
	out := make([]string, 0, len(set))
	for src := range set {
		out = append(out, src)
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}

// assignIDs keeps real numeric ids and gives every other row the next id
// after the largest real one, in catalog order. A numeric id seen twice is
// treated as missing on the later row.
func assignIDs(rows []row) []Movie {
	var maxID int64
	for _, r := range rows {
		if r.movie.ID > maxID {
			maxID = r.movie.ID
		}
	}
	used := make(map[int64]struct{}, len(rows))
	movies := make([]Movie, 0, len(rows))
	next := maxID
	for _, r := range rows {
		movie := r.movie
		if movie.ID > 0 {
			if _, dup := used[movie.ID]; dup {
				if r.key == "" {
					r.key = "dup_" + strconv.FormatInt(movie.ID, 10)
				}
				movie.ID = 0
			}
		}
		if movie.ID <= 0 {
			next++
			movie.ID = next
			movie.SourceKey = r.key
		}
		used[movie.ID] = struct{}{}
		movies = append(movies, movie)
	}
	return movies
}

func applyFilters(movies []Movie, filters Filters) []Movie {
	allowed := make(map[string]struct{}, len(filters.Languages))
	for _, lang := range filters.Languages {
		allowed[strings.ToLower(strings.TrimSpace(lang))] = struct{}{}
	}
	out := movies[:0]
	for _, m := range movies {
		if m.VoteAverage < filters.MinVoteAverage || m.VoteCount < filters.MinVoteCount {
			continue
		}
		if filters.MinYear > 0 && m.Year() < filters.MinYear {
			continue
		}
		if len(allowed) > 0 {
			if _, ok := allowed[m.OriginalLanguage]; !ok {
				continue
			}
		}
		out = append(out, m)
	}
	return out
}
