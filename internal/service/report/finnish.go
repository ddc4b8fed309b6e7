package report

import "fmt"

// Finnish month names, used in report titles and archive file names exactly
// as the published reports expect them.
var monthNames = [12]string{
	"tammikuu", "helmikuu", "maaliskuu", "huhtikuu",
	"toukokuu", "kesäkuu", "heinäkuu", "elokuu",
	"syyskuu", "lokakuu", "marraskuu", "joulukuu",
}

// MonthName returns the Finnish name of a month (1-12).
func MonthName(month int) string {
	return monthNames[month-1]
}

// monthlyTitle builds the section header for a monthly report. The inessive
// case is formed by suffixing "ssa" to the month name (tammikuu -> tammikuussa).
func monthlyTitle(year, month int) string {
	return fmt.Sprintf("Suomenkielisen Wikipedian luetuimmat artikkelit %sssa %d", MonthName(month), year)
}

func yearlyTitle(year int) string {
	return fmt.Sprintf("Suomenkielisen Wikipedian luetuimmat artikkelit vuonna %d", year)
}

// monthlyPath is the archive location of a monthly report, e.g.
// "2024/kuukaudet/03_maaliskuu_2024.txt".
func monthlyPath(year, month int) string {
	return fmt.Sprintf("%d/kuukaudet/%02d_%s_%d.txt", year, month, MonthName(month), year)
}

// yearlyPath is the archive location of a yearly report, e.g.
// "2024/koko_vuosi_2024.txt".
func yearlyPath(year int) string {
	return fmt.Sprintf("%d/koko_vuosi_%d.txt", year, year)
}
