package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"roster/models"
)

const maskedSecret = "********"

// Printer renders command results in the selected format.
type Printer struct {
	Format string
	Writer io.Writer
}

// Print writes data as JSON or YAML, or calls text for the human format.
func (p *Printer) Print(data any, text func(w io.Writer) error) error {
	switch p.Format {
	case "json":
		enc := json.NewEncoder(p.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case "yaml":
		enc := yaml.NewEncoder(p.Writer)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(p.Writer)
	}
}

func (p *Printer) Records(records []models.Record) error {
	return p.Print(records, func(w io.Writer) error {
		if len(records) == 0 {
			_, err := fmt.Fprintln(w, "No records.")
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tSECRET")
		for _, r := range records {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", r.ID, r.Name, r.Secret)
		}
		return tw.Flush()
	})
}

func (p *Printer) Record(r models.Record) error {
	return p.Print(r, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%d\t%s\t%s\n", r.ID, r.Name, r.Secret)
		return err
	})
}

func (p *Printer) Logs(entries []models.LogEntry) error {
	return p.Print(entries, func(w io.Writer) error {
		for _, e := range entries {
			if _, err := fmt.Fprintf(w, "%s  %s\n", e.Date.Local().Format("2006-01-02 15:04:05"), e.Message); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *Printer) Message(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return p.Print(map[string]string{"message": msg}, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, msg)
		return err
	})
}

// masked returns records with their secrets hidden unless show is set.
func masked(records []models.Record, show bool) []models.Record {
	out := make([]models.Record, len(records))
	for i, r := range records {
		if !show {
			r.Secret = maskedSecret
		}
		out[i] = r
	}
	return out
}
