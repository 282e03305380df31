package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/JonMunkholm/partsbin/internal/metrics"
)

var (
	// ErrNoFile is returned when an import carries no file.
	ErrNoFile = errors.New("no file provided")

	// ErrUnknownVocabulary is returned for an export vocabulary that is not registered.
	ErrUnknownVocabulary = errors.New("unknown vocabulary")
)

// DefaultMaxImportBytes bounds an import body when no limit is configured.
const DefaultMaxImportBytes = 10 << 20

// DefaultImportTimeout bounds a single import when none is configured.
const DefaultImportTimeout = 2 * time.Minute

// ServiceConfig tunes the Service. Zero values select the defaults.
type ServiceConfig struct {
	MaxImportBytes       int64
	ImportTimeout        time.Duration
	MaxConcurrentImports int
	ImportWait           time.Duration
	ExportBaseName       string
}

// Service ties the store, the import pipeline and the serializers together.
// It is safe for concurrent use.
type Service struct {
	store     *Store
	limiter   *ImportLimiter
	validator *Validator
	cfg       ServiceConfig
	logger    *slog.Logger
	now       func() time.Time
}

// NewService loads the inventory from persist and returns a ready Service.
func NewService(ctx context.Context, persist Persistence, cfg ServiceConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxImportBytes <= 0 {
		cfg.MaxImportBytes = DefaultMaxImportBytes
	}
	if cfg.ImportTimeout <= 0 {
		cfg.ImportTimeout = DefaultImportTimeout
	}
	if cfg.ExportBaseName == "" {
		cfg.ExportBaseName = DefaultExportBaseName
	}

	s := &Service{
		store:     NewStore(ctx, persist, logger),
		limiter:   NewImportLimiter(cfg.MaxConcurrentImports, cfg.ImportWait),
		validator: NewValidator(),
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
	s.updateGauges()
	return s
}

// Limiter exposes the import limiter for shutdown draining and health output.
func (s *Service) Limiter() *ImportLimiter {
	return s.limiter
}

// MaxImportBytes returns the effective import size limit.
func (s *Service) MaxImportBytes() int64 {
	return s.cfg.MaxImportBytes
}

// Import reads one file and replaces or merges it into the inventory. A read
// or decode failure leaves the inventory unchanged.
func (s *Service) Import(ctx context.Context, fileName string, r io.Reader, mode ImportMode) (ImportResult, error) {
	if r == nil {
		return ImportResult{}, ErrNoFile
	}
	if mode == "" {
		mode = ImportReplace
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		s.logger.Warn("import rejected", "file", fileName, "error", err)
		return ImportResult{}, err
	}
	metrics.ImportsActive.Inc()
	defer func() {
		metrics.ImportsActive.Dec()
		s.limiter.Release()
	}()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ImportTimeout)
	defer cancel()

	start := time.Now()
	result, size, err := s.runImport(ctx, fileName, r, mode)
	metrics.RecordImport(string(result.Format), string(mode), result.Imported, size, time.Since(start), err)

	if err != nil {
		s.logger.Warn("import failed",
			"file", fileName,
			"origin", OriginFromContext(ctx),
			"client_ip", ClientIPFromContext(ctx),
			"mode", mode,
			"error", err,
		)
		return result, err
	}

	s.logger.Info("import complete",
		"file", fileName,
		"origin", OriginFromContext(ctx),
		"client_ip", ClientIPFromContext(ctx),
		"format", result.Format,
		"mode", mode,
		"imported", result.Imported,
		"total", result.Total,
		"duration", time.Since(start),
	)
	return result, nil
}

func (s *Service) runImport(ctx context.Context, fileName string, r io.Reader, mode ImportMode) (ImportResult, int64, error) {
	result := ImportResult{FileName: fileName, Mode: mode}

	data, err := ReadSource(ctx, r, s.cfg.MaxImportBytes)
	if err != nil {
		return result, 0, err
	}
	size := int64(len(data))

	records, format, err := Decode(fileName, data)
	result.Format = format
	if err != nil {
		return result, size, err
	}

	// The read may have finished just as the deadline passed.
	if err := ctx.Err(); err != nil {
		return result, size, err
	}

	switch mode {
	case ImportMerge:
		err = s.store.Merge(ctx, records)
	default:
		err = s.store.ReplaceAll(ctx, records)
	}
	s.updateGauges()
	metrics.RecordMutation("import", err)

	result.Imported = len(records)
	result.Total = s.store.Len()
	return result, size, err
}

// List returns the filtered, sorted view of the inventory.
func (s *Service) List(q ViewQuery) ViewResult {
	return View(s.store.All(), q)
}

// Records returns every record in storage order.
func (s *Service) Records() []Record {
	return s.store.All()
}

// Get returns the part with id or ErrNotFound.
func (s *Service) Get(id string) (Record, error) {
	r, ok := s.store.Get(id)
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, nil
}

// Save validates in and creates or updates the part it describes. created
// reports whether a new part was added.
func (s *Service) Save(ctx context.Context, in RecordInput) (Record, bool, error) {
	if err := s.validator.Validate(in); err != nil {
		return Record{}, false, err
	}

	rec, created, err := s.store.Upsert(ctx, in.Record())
	s.updateGauges()
	metrics.RecordMutation("save", err)
	if err != nil {
		return rec, created, err
	}

	s.logger.Debug("part saved", "id", rec.ID, "name", rec.Name, "created", created)
	return rec, created, nil
}

// Update validates in and replaces the existing part with id. Returns
// ErrNotFound if no such part exists.
func (s *Service) Update(ctx context.Context, id string, in RecordInput) (Record, error) {
	in.ID = id
	if err := s.validator.Validate(in); err != nil {
		return Record{}, err
	}

	rec, err := s.store.Update(ctx, in.Record())
	if errors.Is(err, ErrNotFound) {
		return Record{}, err
	}
	s.updateGauges()
	metrics.RecordMutation("update", err)
	if err != nil {
		return rec, err
	}

	s.logger.Debug("part updated", "id", rec.ID, "name", rec.Name)
	return rec, nil
}

// Delete removes the part with id.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.store.Remove(ctx, id)
	s.updateGauges()
	metrics.RecordMutation("delete", err)
	if err == nil {
		s.logger.Debug("part deleted", "id", id)
	}
	return err
}

// Clear empties the inventory.
func (s *Service) Clear(ctx context.Context) error {
	err := s.store.Clear(ctx)
	s.updateGauges()
	metrics.RecordMutation("clear", err)
	if err == nil {
		s.logger.Info("inventory cleared")
	}
	return err
}

// ResetSample replaces the inventory with the bootstrap sample.
func (s *Service) ResetSample(ctx context.Context) error {
	err := s.store.ReplaceAll(ctx, SampleRecords())
	s.updateGauges()
	metrics.RecordMutation("reset", err)
	if err == nil {
		s.logger.Info("inventory reset to sample")
	}
	return err
}

// ExportCSV renders the whole inventory as CSV.
func (s *Service) ExportCSV() Export {
	records := s.store.All()
	metrics.RecordExport(string(FormatCSV), CanonicalVocabulary)
	return Export{
		FileName:    CSVFileName(s.cfg.ExportBaseName, s.now()),
		ContentType: "text/csv; charset=utf-8",
		Body:        EncodeCSV(records),
		Records:     len(records),
	}
}

// ExportJSON renders the whole inventory as JSON using the named vocabulary.
// An empty key selects the canonical vocabulary.
func (s *Service) ExportJSON(vocabKey string) (Export, error) {
	vocab, ok := GetVocabulary(vocabKey)
	if !ok {
		return Export{}, fmt.Errorf("%w: %s", ErrUnknownVocabulary, vocabKey)
	}

	records := s.store.All()
	body, err := EncodeJSON(records, vocab)
	if err != nil {
		return Export{}, fmt.Errorf("encode json: %w", err)
	}

	metrics.RecordExport(string(FormatJSON), vocab.Key)
	return Export{
		FileName:    JSONFileName(s.cfg.ExportBaseName),
		ContentType: "application/json",
		Body:        body,
		Records:     len(records),
	}, nil
}

// Export renders the inventory in format.
func (s *Service) Export(format Format, vocabKey string) (Export, error) {
	switch format {
	case FormatCSV:
		return s.ExportCSV(), nil
	case FormatJSON:
		return s.ExportJSON(vocabKey)
	default:
		return Export{}, fmt.Errorf("unknown export format: %s", format)
	}
}

func (s *Service) updateGauges() {
	records := s.store.All()
	qty := 0
	for _, r := range records {
		qty += r.Quantity
	}
	metrics.SetInventory(len(records), qty)
}
