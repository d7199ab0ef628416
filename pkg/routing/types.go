package routing

import (
	"encoding/json"
	"maps"
)

// Edge is an undirected link between two routers as supplied by a caller.
type Edge struct {
	From   string
	To     string
	Weight int64
}

// Arc is one direction of an Edge.
type Arc struct {
	From   string
	To     string
	Weight int64
}

// Entry is one row of a distance table.
// An empty Parent means no predecessor.
type Entry struct {
	Dist   Distance
	Parent string
}

// HasParent reports whether some node supplied this entry's distance.
func (e Entry) HasParent() bool {
	return e.Parent != ""
}

type entryJSON struct {
	Dist   Distance `json:"dist"`
	Parent *string  `json:"parent"`
}

func (e Entry) MarshalJSON() ([]byte, error) {
	out := entryJSON{Dist: e.Dist}
	if e.Parent != "" {
		p := e.Parent
		out.Parent = &p
	}
	return json.Marshal(out)
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var in entryJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	e.Dist = in.Dist
	e.Parent = ""
	if in.Parent != nil {
		e.Parent = *in.Parent
	}
	return nil
}

// Table maps node IDs to their current distance entry.
type Table map[string]Entry

// Clone returns an independent copy of the table.
func (t Table) Clone() Table {
	return maps.Clone(t)
}

// Snapshot is the distance table as it stood after a relaxation pass.
// Iteration 0 is the initial table.
type Snapshot struct {
	Iteration int   `json:"iteration"`
	Dists     Table `json:"dists"`
}

// Result is everything one Compute call produces.
type Result struct {
	Source           string     `json:"-"`
	Distances        Table      `json:"distances"`
	HasNegativeCycle bool       `json:"hasNegativeCycle"`
	Snapshots        []Snapshot `json:"iterationSnapshots"`
	Nodes            []string   `json:"nodes"`
}

// Passes returns the number of relaxation passes that ran.
func (r *Result) Passes() int {
	return len(r.Snapshots) - 1
}
