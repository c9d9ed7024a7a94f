package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"marquee/internal/logging"
)

// Source formats understood by Load.
const (
	FormatTMDB        = "tmdb"
	FormatIndian      = "indian"
	FormatIMDbTop1000 = "imdb_top1000"
)

// SourceFile names one CSV input.
type SourceFile struct {
	Path   string
	Format string
}

// Filters are applied to the merged catalog.
type Filters struct {
	MinVoteAverage float64
	MinVoteCount   int64
	MinYear        int
	Languages      []string
}

// LoadOptions configures Load.
type LoadOptions struct {
	Sources []SourceFile
	Filters Filters
	Logger  *slog.Logger
}

// row is a parsed CSV record before merging. key is the source-specific
// identifier for rows that do not carry a numeric id.
type row struct {
	movie Movie
	key   string
	year  int
}

// Load reads every source, merges duplicate titles across sources, assigns
// synthetic ids, and applies the filters. Missing files are skipped with a
// warning; malformed files fail the load.
func Load(ctx context.Context, opts LoadOptions) (*Catalog, error) {
	logger := logging.NewComponentLogger(opts.Logger, "catalog")
	var rows []row
	for _, src := range opts.Sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		parsed, err := readSource(ctx, src, opts.Filters)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logging.WarnWithContext(logger, "catalog source missing", "catalog_source_missing",
					logging.String("path", src.Path),
					logging.String("format", src.Format),
					logging.String(logging.FieldErrorHint, "download the CSV into paths.data_dir or fix dataset.sources"),
					logging.String(logging.FieldImpact, "movies from this source are unavailable"),
				)
				continue
			}
			return nil, fmt.Errorf("load %s source %q: %w", src.Format, src.Path, err)
		}
		logger.Debug("catalog source read",
			logging.String("path", src.Path),
			logging.String("format", src.Format),
			logging.Int("rows", len(parsed)),
		)
		rows = append(rows, parsed...)
	}

	merged := mergeRows(rows)
	movies := assignIDs(merged)
	movies = applyFilters(movies, opts.Filters)

	logger.Info("catalog loaded",
		logging.Int("source_rows", len(rows)),
		logging.Int("merged_rows", len(merged)),
		logging.Int("movies", len(movies)),
	)
	return NewCatalog(movies), nil
}

func readSource(ctx context.Context, src SourceFile, filters Filters) ([]row, error) {
	file, err := os.Open(src.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	switch src.Format {
	case FormatTMDB:
		return readTMDB(ctx, file, filters)
	case FormatIndian:
		return readIndian(ctx, file)
	case FormatIMDbTop1000:
		return readIMDbTop1000(ctx, file)
	default:
		return nil, fmt.Errorf("unsupported format %q", src.Format)
	}
}

// csvTable walks a headered CSV file, exposing cells by column name.
type csvTable struct {
	reader *csv.Reader
	index  map[string]int
	record []string
	line   int
}

func newCSVTable(r io.Reader, required ...string) (*csvTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty file")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %s", col)
		}
	}
	return &csvTable{reader: reader, index: index}, nil
}

// next advances to the following record. It returns false at EOF.
func (t *csvTable) next(ctx context.Context) (bool, error) {
	for {
		record, err := t.reader.Read()
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) && errors.Is(parseErr.Err, csv.ErrFieldCount) {
				continue
			}
			return false, fmt.Errorf("read record: %w", err)
		}
		t.line++
		if t.line%5000 == 0 {
			if err := ctx.Err(); err != nil {
				return false, err
			}
		}
		t.record = record
		return true, nil
	}
}

func (t *csvTable) get(col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(t.record) {
		return ""
	}
	return cleanCell(t.record[i])
}

func readTMDB(ctx context.Context, r io.Reader, filters Filters) ([]row, error) {
	table, err := newCSVTable(r, "id", "title")
	if err != nil {
		return nil, err
	}
	var rows []row
	for {
		ok, err := table.next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return rows, nil
		}
		movie := Movie{
			ID:               parseInt(table.get("id")),
			Title:            table.get("title"),
			ReleaseDate:      table.get("release_date"),
			Overview:         table.get("overview"),
			Genres:           table.get("genres"),
			OriginalLanguage: strings.ToLower(table.get("original_language")),
			PosterPath:       table.get("poster_path"),
			Popularity:       parseFloat(table.get("popularity")),
			Runtime:          int(parseInt(table.get("runtime"))),
			VoteAverage:      parseFloat(table.get("vote_average")),
			VoteCount:        parseInt(table.get("vote_count")),
			IMDbID:           table.get("imdb_id"),
			Source:           SourceTMDB,
		}
		// The TMDB export holds every film ever listed; drop obscure rows early.
		if movie.VoteAverage < filters.MinVoteAverage || movie.VoteCount < filters.MinVoteCount {
			continue
		}
		var key string
		if movie.ID <= 0 {
			movie.ID = 0
			key = "tmdb_" + strconv.Itoa(table.line-1)
		}
		rows = append(rows, row{movie: movie, key: key, year: movie.Year()})
	}
}

func readIndian(ctx context.Context, r io.Reader) ([]row, error) {
	table, err := newCSVTable(r, "Movie Name")
	if err != nil {
		return nil, err
	}
	var rows []row
	for {
		ok, err := table.next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return rows, nil
		}
		id := table.get("ID")
		year := int(parseInt(table.get("Year")))
		if year <= 0 {
			year = 2000
		}
		genres := table.get("Genre")
		if genres == "" {
			genres = "Unknown"
		}
		key := "indian_" + id
		if id == "" {
			key = "indian_row" + strconv.Itoa(table.line-1)
		}
		rows = append(rows, row{
			movie: Movie{
				Title:            table.get("Movie Name"),
				IMDbID:           id,
				VoteAverage:      parseFloat(table.get("Rating(10)")),
				VoteCount:        parseInt(table.get("Votes")),
				ReleaseDate:      strconv.Itoa(year) + "-01-01",
				OriginalLanguage: mapLanguage(table.get("Language")),
				Genres:           genres,
				Source:           SourceIndian,
			},
			key:  key,
			year: year,
		})
	}
}

func readIMDbTop1000(ctx context.Context, r io.Reader) ([]row, error) {
	table, err := newCSVTable(r, "Series_Title")
	if err != nil {
		return nil, err
	}
	var rows []row
	for {
		ok, err := table.next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return rows, nil
		}
		year := int(parseInt(table.get("Released_Year")))
		if year <= 0 {
			year = 2000
		}
		rows = append(rows, row{
			movie: Movie{
				Title:            table.get("Series_Title"),
				VoteAverage:      parseFloat(table.get("IMDB_Rating")),
				VoteCount:        parseInt(table.get("No_of_Votes")),
				ReleaseDate:      strconv.Itoa(year) + "-01-01",
				OriginalLanguage: "en",
				Genres:           table.get("Genre"),
				Overview:         table.get("Overview"),
				PosterPath:       table.get("Poster_Link"),
				Source:           SourceIMDbTop1000,
			},
			key:  "imdb_" + strconv.Itoa(table.line-1),
			year: year,
		})
	}
}
