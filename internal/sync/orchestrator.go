package sync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"planora/internal/gateway"
)

const (
	DirectionPush = "push"
	DirectionPull = "pull"
	DirectionBoth = "both"
)

var (
	ErrInvalidDirection = errors.New("direction must be push, pull or both")
	ErrNoTables         = errors.New("at least one table is required")
	ErrAlreadyRunning   = errors.New("a sync run is already in progress")
)

// Gateway is the subset of the bridge client the orchestrator needs.
type Gateway interface {
	Query(ctx context.Context, req gateway.QueryRequest) (*gateway.Result, error)
	Exec(ctx context.Context, server, database, sql string, params map[string]interface{}) (*gateway.Result, error)
}

type Options struct {
	Direction string   `json:"direction"`
	Tables    []string `json:"tables"`
}

// TableResult is the per-table outcome of a run. Tables fail independently;
// one table's errors never abort the others.
type TableResult struct {
	Pushed int      `json:"pushed"`
	Pulled int      `json:"pulled"`
	Errors []string `json:"errors"`
}

type Result struct {
	Success    bool                    `json:"success"`
	Direction  string                  `json:"direction"`
	Tables     map[string]*TableResult `json:"tables"`
	StartedAt  time.Time               `json:"started_at"`
	FinishedAt time.Time               `json:"finished_at"`
}

type Status struct {
	Running    bool    `json:"running"`
	LastResult *Result `json:"last_result,omitempty"`
}

// Orchestrator coordinates push/pull of allow-listed tables between the
// primary data store and the external database behind the gateway. Writes
// only ever target the gateway's configured write scope.
type Orchestrator struct {
	local    LocalStore
	gw       Gateway
	server   string
	database string

	mu      sync.Mutex
	running bool
	last    *Result
}

func NewOrchestrator(local LocalStore, gw Gateway, server, database string) *Orchestrator {
	return &Orchestrator{
		local:    local,
		gw:       gw,
		server:   server,
		database: database,
	}
}

func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Status{Running: o.running, LastResult: o.last}
}

// Sync validates the request, then runs it table by table. Validation
// failures happen before any network or database call.
func (o *Orchestrator) Sync(ctx context.Context, opts Options) (*Result, error) {
	switch opts.Direction {
	case DirectionPush, DirectionPull, DirectionBoth:
	default:
		return nil, ErrInvalidDirection
	}
	if len(opts.Tables) == 0 {
		return nil, ErrNoTables
	}
	for _, table := range opts.Tables {
		if _, ok := AllowedTables[table]; !ok {
			return nil, fmt.Errorf("table %q is not allowed", table)
		}
	}

	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	o.running = true
	o.mu.Unlock()

	result := &Result{
		Success:   true,
		Direction: opts.Direction,
		Tables:    make(map[string]*TableResult, len(opts.Tables)),
		StartedAt: time.Now(),
	}

	for _, table := range opts.Tables {
		tr := &TableResult{}
		result.Tables[table] = tr

		// Push first so local authoritative writes win conflicts before
		// any external-only rows are pulled back.
		if opts.Direction == DirectionPush || opts.Direction == DirectionBoth {
			o.pushTable(ctx, table, tr)
		}
		if opts.Direction == DirectionPull || opts.Direction == DirectionBoth {
			o.pullTable(ctx, table, tr)
		}

		if len(tr.Errors) > 0 {
			result.Success = false
		}
	}

	result.FinishedAt = time.Now()

	o.mu.Lock()
	o.running = false
	o.last = result
	o.mu.Unlock()

	return result, nil
}

func (o *Orchestrator) pushTable(ctx context.Context, table string, tr *TableResult) {
	spec := AllowedTables[table]

	rows, err := o.local.ReadAll(ctx, table)
	if err != nil {
		tr.Errors = append(tr.Errors, fmt.Sprintf("read local %s: %v", table, err))
		return
	}

	updateSQL := spec.updateSQL(table)
	insertSQL := spec.insertSQL(table)

	for _, row := range rows {
		params := rowParams(spec, row)

		res, err := o.gw.Exec(ctx, o.server, o.database, updateSQL, params)
		if err != nil {
			tr.Errors = append(tr.Errors, fmt.Sprintf("push %s id=%v: %v", table, row["id"], err))
			continue
		}

		if affectedRows(res) == 0 {
			if _, err := o.gw.Exec(ctx, o.server, o.database, insertSQL, params); err != nil {
				tr.Errors = append(tr.Errors, fmt.Sprintf("push %s id=%v: %v", table, row["id"], err))
				continue
			}
		}
		tr.Pushed++
	}
}

func (o *Orchestrator) pullTable(ctx context.Context, table string, tr *TableResult) {
	spec := AllowedTables[table]

	res, err := o.gw.Query(ctx, gateway.QueryRequest{
		SQL:      spec.selectSQL(table),
		Server:   o.server,
		Database: o.database,
		Params:   map[string]interface{}{},
	})
	if err != nil {
		tr.Errors = append(tr.Errors, fmt.Sprintf("pull %s: %v", table, err))
		return
	}

	for _, row := range res.Recordset {
		applied, err := o.local.Upsert(ctx, table, row)
		if err != nil {
			tr.Errors = append(tr.Errors, fmt.Sprintf("pull %s id=%v: %v", table, row["id"], err))
			continue
		}
		if applied {
			tr.Pulled++
		}
	}
}

// rowParams restricts the named parameters to the table's known columns so a
// local schema change cannot leak extra fields into the external database.
func rowParams(spec tableSpec, row map[string]interface{}) map[string]interface{} {
	params := make(map[string]interface{}, len(spec.columns))
	for _, col := range spec.columns {
		value, ok := row[col]
		if !ok {
			value = nil
		}
		params[col] = value
	}
	return params
}

func affectedRows(res *gateway.Result) int64 {
	if res == nil {
		return 0
	}
	var total int64
	for _, n := range res.RowsAffected {
		total += n
	}
	return total
}

// LogResult writes a one-line summary per table, best-effort style.
func LogResult(result *Result) {
	for table, tr := range result.Tables {
		log.Printf("sync %s %s: pushed=%d pulled=%d errors=%d",
			result.Direction, table, tr.Pushed, tr.Pulled, len(tr.Errors))
	}
}
