// Package catalog holds the fixed metric catalogue: the single table of
// (category, variable) facts that schema creation, roll-up SQL, and alert
// message rendering all read from instead of maintaining three parallel
// switch statements.
package catalog

// Category identifies one of the three metric categories.
type Category string

const (
	Sys  Category = "sys"
	Net  Category = "net"
	Disk Category = "disk"
)

// Resolution identifies one of the four storage tiers.
type Resolution string

const (
	Second Resolution = "s"
	Minute Resolution = "m"
	Hour   Resolution = "h"
	Day    Resolution = "d"
)

// AggRule says how a column is combined when rolling up to a coarser tier.
type AggRule int

const (
	AggAvgRound2  AggRule = iota // percentages: AVG, 2 decimals
	AggAvgRoundInt                // rates: AVG, rounded to integer
	AggMax                       // cumulative counters: MAX
)

// Unit describes how a column's value is rendered in alert messages.
type Unit int

const (
	UnitPercent Unit = iota
	UnitBytesPerSec
	UnitNone // load averages: unit-less
)

// Column describes one data column within a category, beyond timestamp
// (and, for net/disk, beyond the name key).
type Column struct {
	Name         string
	Agg          AggRule
	Unit         Unit
	FriendlyName string
	// Alertable is false for raw cumulative counters, which are never the
	// subject of an alert and are excluded from querySeries output for
	// net/disk.
	Alertable bool
}

// Keyed reports whether rows of this category carry a "name" resource key
// (interface for net, mount point for disk). sys rows do not.
func (c Category) Keyed() bool {
	return c == Net || c == Disk
}

var columns = map[Category][]Column{
	Sys: {
		{Name: "cpu_usage", Agg: AggAvgRound2, Unit: UnitPercent, FriendlyName: "CPU Usage", Alertable: true},
		{Name: "mem_usage", Agg: AggAvgRound2, Unit: UnitPercent, FriendlyName: "Memory Usage", Alertable: true},
		{Name: "swap_usage", Agg: AggAvgRound2, Unit: UnitPercent, FriendlyName: "Swap Usage", Alertable: true},
		{Name: "load_avg_1", Agg: AggAvgRound2, Unit: UnitNone, FriendlyName: "1 Min Load Average", Alertable: true},
		{Name: "load_avg_5", Agg: AggAvgRound2, Unit: UnitNone, FriendlyName: "5 Min Load Average", Alertable: true},
		{Name: "load_avg_15", Agg: AggAvgRound2, Unit: UnitNone, FriendlyName: "15 Min Load Average", Alertable: true},
	},
	Net: {
		{Name: "rx", Agg: AggMax, Unit: UnitNone, FriendlyName: "Network Bytes Received", Alertable: false},
		{Name: "tx", Agg: AggMax, Unit: UnitNone, FriendlyName: "Network Bytes Sent", Alertable: false},
		{Name: "rx_rate", Agg: AggAvgRoundInt, Unit: UnitBytesPerSec, FriendlyName: "Network Receive Rate", Alertable: true},
		{Name: "tx_rate", Agg: AggAvgRoundInt, Unit: UnitBytesPerSec, FriendlyName: "Network Transmit Rate", Alertable: true},
	},
	Disk: {
		{Name: "total_read", Agg: AggMax, Unit: UnitNone, FriendlyName: "Disk Bytes Read", Alertable: false},
		{Name: "total_write", Agg: AggMax, Unit: UnitNone, FriendlyName: "Disk Bytes Written", Alertable: false},
		{Name: "read_rate", Agg: AggAvgRoundInt, Unit: UnitBytesPerSec, FriendlyName: "Disk Read Rate", Alertable: true},
		{Name: "write_rate", Agg: AggAvgRoundInt, Unit: UnitBytesPerSec, FriendlyName: "Disk Write Rate", Alertable: true},
		{Name: "disk_usage", Agg: AggAvgRound2, Unit: UnitPercent, FriendlyName: "Disk Usage", Alertable: true},
	},
}

// Columns returns the column facts for a category, beyond timestamp/name.
func Columns(cat Category) []Column {
	return columns[cat]
}

// AlertableColumns returns only the columns an Alert may reference.
func AlertableColumns(cat Category) []Column {
	all := columns[cat]
	out := make([]Column, 0, len(all))
	for _, c := range all {
		if c.Alertable {
			out = append(out, c)
		}
	}
	return out
}

// ColumnByName looks up a single column by name within a category.
func ColumnByName(cat Category, name string) (Column, bool) {
	for _, c := range columns[cat] {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Categories lists all three categories in a stable order.
func Categories() []Category {
	return []Category{Sys, Net, Disk}
}

// Resolutions lists all four resolutions, finest first.
func Resolutions() []Resolution {
	return []Resolution{Second, Minute, Hour, Day}
}

// Table returns the sqlite table name for a (category, resolution) pair,
// e.g. (Net, Minute) -> "net_m", (Sys, Hour) -> "general_h".
func Table(cat Category, res Resolution) string {
	prefix := string(cat)
	if cat == Sys {
		prefix = "general"
	}
	return prefix + "_" + string(res)
}

// Coarser returns the next coarser resolution and true, or ("", false) if
// res is already the coarsest (Day).
func Coarser(res Resolution) (Resolution, bool) {
	switch res {
	case Second:
		return Minute, true
	case Minute:
		return Hour, true
	case Hour:
		return Day, true
	default:
		return "", false
	}
}
