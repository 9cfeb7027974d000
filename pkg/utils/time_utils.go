package utils

import "time"

// OrgTimezone is where the organisation operates; dates shown to people
// (dashboard buckets, donor notes) use it.
const OrgTimezone = "Europe/Madrid"

// Spain mainland time (CET/CEST)
var orgLoc = func() *time.Location {
	if loc, err := time.LoadLocation(OrgTimezone); err == nil {
		return loc
	}
	return time.FixedZone("CET", 1*3600)
}()

// FormatOrgDate renders t as YYYY-MM-DD in the organisation's timezone.
func FormatOrgDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(orgLoc).Format("2006-01-02")
}
