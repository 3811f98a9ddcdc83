package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/verte-zerg/vgtrends/internal/model"
)

// RenderRuns prints stored runs, one per line.
func RenderRuns(w io.Writer, runs []model.RunSummary) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs stored.")
		return err
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		platform := r.Platform
		if platform == "" {
			platform = "all"
		}
		rows = append(rows, []string{
			r.ID,
			r.CreatedAt.Local().Format(time.DateTime),
			fmt.Sprintf("%d-%d", r.StartYear, r.EndYear),
			platform,
			strconv.Itoa(r.Records),
		})
	}
	lines := formatTable([]string{"Run", "Created", "Years", "Platform", "Records"}, rows, map[int]bool{4: true})
	return writeLines(w, lines)
}
