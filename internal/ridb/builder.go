package ridb

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultExportURL = "https://ridb.recreation.gov/downloads/RIDBFullExport_V1_CSV.zip"
	DefaultZipPath   = "RIDBFullExport_V1_CSV.zip"
	DefaultOutputCSV = "download.csv"

	facilitiesCSV = "Facilities_API_v1.csv"
	addressesCSV  = "FacilityAddresses_API_v1.csv"

	// Downtown San Francisco, the reference center point.
	DefaultLatitude  = 37.7749
	DefaultLongitude = -122.4194
	DefaultDistance  = 150.0
)

// Water-access facilities slip through the Campground type filter by name.
var boatPattern = regexp.MustCompile(`(?i)(boat|sailing|aquatic|anchor|marina|pier|dock|vessel)`)

type Option func(*Builder)

func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

func WithExportURL(url string) Option {
	return func(b *Builder) {
		b.exportURL = url
	}
}

func WithZipPath(path string) Option {
	return func(b *Builder) {
		b.zipPath = path
	}
}

func WithOutputCSV(path string) Option {
	return func(b *Builder) {
		b.outputCSV = path
	}
}

func WithCenter(lat, lon float64) Option {
	return func(b *Builder) {
		b.lat = lat
		b.lon = lon
	}
}

func WithMaxDistance(miles float64) Option {
	return func(b *Builder) {
		b.maxDistance = miles
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(b *Builder) {
		b.httpClient = client
	}
}

// Builder produces the facility-ID input list (download.csv) from the RIDB
// full CSV export: reservable campgrounds within maxDistance miles of a
// center point, nearest first.
type Builder struct {
	logger      *zap.Logger
	httpClient  *http.Client
	exportURL   string
	zipPath     string
	outputCSV   string
	lat         float64
	lon         float64
	maxDistance float64
}

func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		logger:      zap.NewNop(),
		httpClient:  &http.Client{Timeout: 10 * time.Minute},
		exportURL:   DefaultExportURL,
		zipPath:     DefaultZipPath,
		outputCSV:   DefaultOutputCSV,
		lat:         DefaultLatitude,
		lon:         DefaultLongitude,
		maxDistance: DefaultDistance,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build ensures the RIDB export is on disk, then writes the filtered
// facility list to the output CSV atomically.
func (b *Builder) Build(ctx context.Context) error {
	if err := b.ensureExport(ctx); err != nil {
		return err
	}
	return b.buildCSV()
}

func (b *Builder) ensureExport(ctx context.Context) error {
	if info, err := os.Stat(b.zipPath); err == nil && info.Size() > 0 {
		b.logger.Info("using cached RIDB export",
			zap.String("path", b.zipPath),
			zap.Int64("size", info.Size()),
		)
		return nil
	}

	b.logger.Info("downloading RIDB export", zap.String("url", b.exportURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.exportURL, nil)
	if err != nil {
		return err
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("downloading RIDB export: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading RIDB export: HTTP %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(b.zipPath), ".tmp-ridb-")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, b.zipPath)
}

type candidate struct {
	ID       string
	Name     string
	State    string
	Distance float64
}

func (b *Builder) buildCSV() error {
	zr, err := zip.OpenReader(b.zipPath)
	if err != nil {
		return fmt.Errorf("opening RIDB export: %w", err)
	}
	defer zr.Close()

	b.logger.Info("reading facilities")
	facilities, err := readZipCSV(&zr.Reader, facilitiesCSV)
	if err != nil {
		return err
	}

	b.logger.Info("reading addresses")
	addresses, err := readZipCSV(&zr.Reader, addressesCSV)
	if err != nil {
		return err
	}

	states := map[string]string{}
	for _, row := range addresses.rows {
		id := addresses.field(row, "FacilityID")
		if id != "" {
			states[id] = addresses.field(row, "AddressStateCode")
		}
	}

	var candidates []candidate
	seen := map[string]struct{}{}

	for _, row := range facilities.rows {
		if facilities.field(row, "FacilityTypeDescription") != "Campground" {
			continue
		}
		if !strings.EqualFold(facilities.field(row, "Reservable"), "true") {
			continue
		}

		name := facilities.field(row, "FacilityName")
		if boatPattern.MatchString(name) {
			continue
		}

		lat, latErr := strconv.ParseFloat(facilities.field(row, "FacilityLatitude"), 64)
		lon, lonErr := strconv.ParseFloat(facilities.field(row, "FacilityLongitude"), 64)
		if latErr != nil || lonErr != nil {
			continue
		}

		id := facilities.field(row, "FacilityID")
		if id == "" {
			continue
		}

		state, ok := states[id]
		if !ok {
			continue
		}

		d := Haversine(b.lat, b.lon, lat, lon)
		if d > b.maxDistance {
			continue
		}

		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		candidates = append(candidates, candidate{
			ID:       id,
			Name:     name,
			State:    state,
			Distance: d,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})

	b.logger.Info("writing facility list",
		zap.String("path", b.outputCSV),
		zap.Int("rows", len(candidates)),
	)

	return b.writeCSV(candidates)
}

func (b *Builder) writeCSV(candidates []candidate) error {
	tmp, err := os.CreateTemp(filepath.Dir(b.outputCSV), ".tmp-download-")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	w := csv.NewWriter(tmp)
	if err := w.Write([]string{"FacilityID", "FacilityName", "AddressStateCode", "distance_miles"}); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	for _, c := range candidates {
		row := []string{c.ID, c.Name, c.State, strconv.FormatFloat(c.Distance, 'f', 1, 64)}
		if err := w.Write(row); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, b.outputCSV)
}

// table is a CSV loaded with its header indexed by column name.
type table struct {
	index map[string]int
	rows  [][]string
}

func (t *table) field(row []string, name string) string {
	i, ok := t.index[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func readZipCSV(zr *zip.Reader, name string) (*table, error) {
	f, err := zr.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening %s in export: %w", name, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading %s header: %w", name, err)
	}

	t := &table{index: map[string]int{}}
	for i, col := range header {
		t.index[strings.TrimSpace(col)] = i
	}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		t.rows = append(t.rows, row)
	}

	return t, nil
}
