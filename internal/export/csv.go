// Package export materializes book-of-accounts rows as a CSV download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/asauntung/bumdes/internal/ledger"
	"github.com/asauntung/bumdes/internal/models"
)

// Header is the BKU column row.
var Header = []string{
	"Tanggal", "No. Bukti", "Uraian", "Kategori", "Penerimaan", "Pengeluaran", "Saldo", "Dibuat Oleh", "Disetujui Oleh",
}

// WriteCSV writes the header and rows. Fields containing a separator, quote
// or newline are quoted.
func WriteCSV(w io.Writer, rows []ledger.ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.Strings()); err != nil {
			return fmt.Errorf("write row %s: %w", r.Reference, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileName is BKU_<org>_<YYYY-MM-DD>.csv with spaces in org replaced.
func FileName(org string, day time.Time) string {
	org = strings.Join(strings.Fields(org), "_")
	if org == "" {
		return fmt.Sprintf("BKU_%s.csv", day.Format(models.DateLayout))
	}
	return fmt.Sprintf("BKU_%s_%s.csv", org, day.Format(models.DateLayout))
}
