package config

import (
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"github.com/chrissnell/mbdist/pkg/migrate"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Migrator returns a migrator over the embedded configuration schema
func (s *SQLiteProvider) Migrator(logger *zap.SugaredLogger) *migrate.Migrator {
	provider := migrate.NewFSProvider(migrationsFS, "migrations", "config_schema_migrations")
	return migrate.NewMigrator(s.db, provider, logger)
}

// Migrate brings the configuration schema up to date
func (s *SQLiteProvider) Migrate(logger *zap.SugaredLogger) error {
	if err := s.Migrator(logger).MigrateUp(); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", s.dbPath, err)
	}
	return nil
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	figures, err := s.GetFigures()
	if err != nil {
		return nil, fmt.Errorf("failed to load figures: %w", err)
	}
	return &ConfigData{Figures: figures}, nil
}

// GetFigures returns figure configurations from the database
func (s *SQLiteProvider) GetFigures() ([]FigureData, error) {
	query := `
		SELECT id, name, glacier, version, input_path, delimiter,
		       year_column, value_column, divisor, encoding, margin,
		       x_label, output_dir, output_basename, output_formats,
		       width_in, height_in
		FROM figures
		ORDER BY position, name
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query figures: %w", err)
	}
	defer rows.Close()

	var ids []int64
	var figures []FigureData
	for rows.Next() {
		var id int64
		var f FigureData
		var encoding, xLabel, outputDir, basename, formats sql.NullString
		var width, height sql.NullFloat64

		err := rows.Scan(
			&id, &f.Name, &f.Glacier, &f.Version, &f.Input.Path, &f.Input.Delimiter,
			&f.Input.YearColumn, &f.Input.ValueColumn, &f.Input.Divisor, &encoding, &f.Margin,
			&xLabel, &outputDir, &basename, &formats,
			&width, &height,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan figure row: %w", err)
		}

		// Convert nullable fields, leaving zero values for defaults
		f.Input.Encoding = encoding.String
		f.XLabel = xLabel.String
		f.Output.Dir = outputDir.String
		f.Output.Basename = basename.String
		if formats.Valid && formats.String != "" {
			f.Output.Formats = strings.Split(formats.String, ",")
		}
		f.Output.WidthIn = width.Float64
		f.Output.HeightIn = height.Float64

		ids = append(ids, id)
		figures = append(figures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate figures: %w", err)
	}

	for i, id := range ids {
		if figures[i].Highlights, err = s.getHighlights(id); err != nil {
			return nil, err
		}
		if figures[i].Quantiles, err = s.getQuantiles(id); err != nil {
			return nil, err
		}
		ApplyDefaults(&figures[i])
	}

	return figures, nil
}

func (s *SQLiteProvider) getHighlights(figureID int64) ([]HighlightData, error) {
	rows, err := s.db.Query(`
		SELECT year, color, label_template
		FROM figure_highlights
		WHERE figure_id = ?
		ORDER BY position
	`, figureID)
	if err != nil {
		return nil, fmt.Errorf("failed to query highlights: %w", err)
	}
	defer rows.Close()

	// Non-nil so an explicitly empty list is not replaced by the defaults
	highlights := []HighlightData{}
	for rows.Next() {
		var h HighlightData
		var tmpl sql.NullString
		if err := rows.Scan(&h.Year, &h.Color, &tmpl); err != nil {
			return nil, fmt.Errorf("failed to scan highlight row: %w", err)
		}
		h.LabelTemplate = tmpl.String
		highlights = append(highlights, h)
	}
	return highlights, rows.Err()
}

func (s *SQLiteProvider) getQuantiles(figureID int64) ([]QuantileData, error) {
	rows, err := s.db.Query(`
		SELECT probability, label
		FROM figure_quantiles
		WHERE figure_id = ?
		ORDER BY position
	`, figureID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quantiles: %w", err)
	}
	defer rows.Close()

	quantiles := []QuantileData{}
	for rows.Next() {
		var q QuantileData
		if err := rows.Scan(&q.Probability, &q.Label); err != nil {
			return nil, fmt.Errorf("failed to scan quantile row: %w", err)
		}
		quantiles = append(quantiles, q)
	}
	return quantiles, rows.Err()
}

// GetFigure returns the figure with the given name
func (s *SQLiteProvider) GetFigure(name string) (*FigureData, error) {
	figures, err := s.GetFigures()
	if err != nil {
		return nil, err
	}
	return findFigure(figures, name)
}

// SaveConfig replaces the stored figures with those in config
func (s *SQLiteProvider) SaveConfig(config *ConfigData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM figure_quantiles",
		"DELETE FROM figure_highlights",
		"DELETE FROM figures",
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to clear figures: %w", err)
		}
	}

	for pos, f := range config.Figures {
		res, err := tx.Exec(`
			INSERT INTO figures (
				name, position, glacier, version, input_path, delimiter,
				year_column, value_column, divisor, encoding, margin,
				x_label, output_dir, output_basename, output_formats,
				width_in, height_in
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			f.Name, pos, f.Glacier, f.Version, f.Input.Path, f.Input.Delimiter,
			f.Input.YearColumn, f.Input.ValueColumn, f.Input.Divisor, nullString(f.Input.Encoding), f.Margin,
			nullString(f.XLabel), nullString(f.Output.Dir), nullString(f.Output.Basename),
			nullString(strings.Join(f.Output.Formats, ",")),
			f.Output.WidthIn, f.Output.HeightIn,
		)
		if err != nil {
			return fmt.Errorf("failed to insert figure %q: %w", f.Name, err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get figure id: %w", err)
		}

		for i, h := range f.Highlights {
			if _, err := tx.Exec(`
				INSERT INTO figure_highlights (figure_id, position, year, color, label_template)
				VALUES (?, ?, ?, ?, ?)
			`, id, i, h.Year, h.Color, nullString(h.LabelTemplate)); err != nil {
				return fmt.Errorf("failed to insert highlight %d of %q: %w", h.Year, f.Name, err)
			}
		}

		for i, q := range f.Quantiles {
			if _, err := tx.Exec(`
				INSERT INTO figure_quantiles (figure_id, position, probability, label)
				VALUES (?, ?, ?, ?)
			`, id, i, q.Probability, q.Label); err != nil {
				return fmt.Errorf("failed to insert quantile %v of %q: %w", q.Probability, f.Name, err)
			}
		}
	}

	return tx.Commit()
}

// IsReadOnly returns false since the database can be written by SaveConfig
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
