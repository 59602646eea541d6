package alert

import (
	"fmt"
	"math"

	"hostwatch/internal/catalog"
)

var bytesPerSecUnits = []string{"B/s", "KiB/s", "MiB/s", "GiB/s"}

// formatBytesPerSec renders a rate the way the original format_bytes_per_sec
// does: SI-binary scaling chosen by floor(log1024(value)), clamped to
// [0, len(units)-1], 2 decimal places.
func formatBytesPerSec(v float64) string {
	if v <= 0 {
		return "0.00 B/s"
	}
	exp := int(math.Floor(math.Log(v) / math.Log(1024)))
	if exp < 0 {
		exp = 0
	}
	if exp > len(bytesPerSecUnits)-1 {
		exp = len(bytesPerSecUnits) - 1
	}
	scaled := v / math.Pow(1024, float64(exp))
	return fmt.Sprintf("%.2f %s", scaled, bytesPerSecUnits[exp])
}

// valueWithUnit renders the alert's threshold (not the live aggregate —
// see SPEC_FULL.md §4.6) using the unit the catalogue assigns to the
// alert's variable.
func valueWithUnit(cat catalog.Category, varName string, threshold float64) string {
	col, ok := catalog.ColumnByName(cat, varName)
	if !ok {
		return fmt.Sprintf("%g", threshold)
	}
	switch col.Unit {
	case catalog.UnitPercent:
		return fmt.Sprintf("%g%%", threshold)
	case catalog.UnitBytesPerSec:
		return formatBytesPerSec(threshold)
	default:
		return fmt.Sprintf("%g", threshold)
	}
}

func friendlyName(cat catalog.Category, varName string) string {
	if col, ok := catalog.ColumnByName(cat, varName); ok {
		return col.FriendlyName
	}
	return fmt.Sprintf("%s %s", cat, varName)
}

func verb(op Operator) string {
	if op == GreaterThan {
		return "exceeded"
	}
	return "dropped below"
}

// RenderMessage renders the fire/relief message for an alert transition,
// per §4.6. The numeric value shown is always a.Threshold, never the
// live measured aggregate.
func RenderMessage(a Alert, firing bool) string {
	name := friendlyName(a.Var.Cat, a.Var.Var)
	resourceSuffix := ""
	if a.Var.Cat != catalog.Sys {
		resourceSuffix = fmt.Sprintf(" (%s)", a.Var.Resrc)
	}
	value := valueWithUnit(a.Var.Cat, a.Var.Var, a.Threshold)
	v := verb(a.Operator)

	if firing {
		return fmt.Sprintf("ALERT: %s%s %s %s (sustained for %d min)", name, resourceSuffix, v, value, a.TimeWindowMinutes)
	}
	return fmt.Sprintf("RESOLVED: %s%s no longer %s %s (back to normal)", name, resourceSuffix, v, value)
}
