package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/medsupply/internal/client/models"
	"github.com/dmitrijs2005/medsupply/internal/client/services"
	"github.com/dmitrijs2005/medsupply/internal/client/spreadsheet"
)

const maxListedDuplicates = 10

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func storeLabel(s models.Supply) string {
	return strings.TrimSpace(fmt.Sprintf("%d %s", s.Store, s.StoreName))
}

func expiryLabel(s models.Supply, now time.Time) string {
	st := services.ClassifyExpiry(s, now)
	if st == services.ExpiryNone {
		return "-"
	}
	return st.String()
}

func renderFetchResult(w io.Writer, res services.FetchResult) {
	switch res.Source {
	case services.SourceRemote:
		fmt.Fprintf(w, "Downloaded %s.\n", plural(res.Count, "supply", "supplies"))
	case services.SourceCache:
		fmt.Fprintf(w, "Local cache is up to date (%s).\n", plural(res.Count, "supply", "supplies"))
	case services.SourceOfflineCache:
		fmt.Fprintf(w, "Offline: showing %s from the local cache.\n", plural(res.Count, "supply", "supplies"))
	case services.SourceEmpty:
		fmt.Fprintln(w, "Offline and no local data available.")
	}
}

func renderSupplies(w io.Writer, items []models.Supply, now time.Time) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No supplies found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tDESCRIPTION\tCATEGORY\tUOM\tSTORE\tEXPIRY\tSTATUS")
	for _, s := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ProductCode, dash(s.ProductDescription), dash(s.Category), dash(s.UnitOfMeasure),
			storeLabel(s), dash(s.ExpiryDate), expiryLabel(s, now))
	}
	tw.Flush()
	fmt.Fprintln(w, plural(len(items), "supply", "supplies"))
}

func renderSupply(w io.Writer, s models.Supply, now time.Time) {
	row := func(label, value string) {
		fmt.Fprintf(w, "%-13s %s\n", label+":", value)
	}
	row("Code", s.ProductCode)
	row("Description", dash(s.ProductDescription))
	row("Category", dash(s.Category))
	row("Unit", dash(s.UnitOfMeasure))
	row("Store", storeLabel(s))
	expiry := dash(s.ExpiryDate)
	if st := services.ClassifyExpiry(s, now); st != services.ExpiryNone {
		expiry = fmt.Sprintf("%s (%s)", s.ExpiryDate, st)
	}
	row("Expiry", expiry)
	row("Image", dash(s.ImageURL))
}

func renderExpiry(w io.Writer, expired, near []models.Supply) {
	section := func(title string, items []models.Supply) {
		fmt.Fprintf(w, "%s (%d)\n", title, len(items))
		if len(items) == 0 {
			fmt.Fprintln(w, "  none")
			return
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, s := range items {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", s.ExpiryDate, s.ProductCode, dash(s.ProductDescription))
		}
		tw.Flush()
	}
	if expired != nil {
		section("Expired", expired)
	}
	if near != nil {
		section("Expiring within a month", near)
	}
}

func renderPreview(w io.Writer, res models.DuplicateCheckResult) {
	fmt.Fprintf(w, "%d new, %d already in the local cache\n", len(res.NewItems), len(res.DuplicateItems))
	if len(res.DuplicateItems) == 0 {
		return
	}
	codes := models.Keys(res.DuplicateItems)
	extra := 0
	if len(codes) > maxListedDuplicates {
		extra = len(codes) - maxListedDuplicates
		codes = codes[:maxListedDuplicates]
	}
	line := "Already cached: " + strings.Join(codes, ", ")
	if extra > 0 {
		line += fmt.Sprintf(" (+%d more)", extra)
	}
	fmt.Fprintln(w, line)
}

func renderMapping(w io.Writer, res *spreadsheet.Result) {
	fmt.Fprintln(w, "Column mapping:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, f := range spreadsheet.Fields {
		col := "(default)"
		if i := res.Mapping.Column(f); i >= 0 && i < len(res.Header) {
			col = res.Header[i]
		}
		fmt.Fprintf(tw, "  %s\t%s\n", f, col)
	}
	tw.Flush()
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warn)
	}
}

func renderStats(w io.Writer, s *models.ImportStats) {
	fmt.Fprintf(w, "%-10s %d\n", "Processed:", s.TotalProcessed)
	fmt.Fprintf(w, "%-10s %d\n", "New:", s.NewRecords)
	fmt.Fprintf(w, "%-10s %d\n", "Updated:", s.UpdatedRecords)
	fmt.Fprintf(w, "%-10s %d\n", "Skipped:", s.Skipped)
	fmt.Fprintf(w, "%-10s %d\n", "Errors:", len(s.Errors))
	for _, e := range s.Errors {
		fmt.Fprintf(w, "  - %s\n", e)
	}
}

func renderProfile(w io.Writer, p models.UserProfile) {
	row := func(label, value string) {
		fmt.Fprintf(w, "%-13s %s\n", label+":", value)
	}
	row("User", dash(p.UserID))
	if !p.Managed {
		row("Role", "unmanaged (no access restrictions)")
		return
	}
	row("Role", p.Role)
	yesNo := func(b bool) string {
		if b {
			return "yes"
		}
		return "no"
	}
	row("Blocked", yesNo(p.IsBlocked))
	row("Edit", yesNo(p.Allows(models.PermEdit)))
	row("Upload", yesNo(p.Allows(models.PermUpload)))
	row("Delete", yesNo(p.Allows(models.PermDelete)))
}
