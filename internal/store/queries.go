package store

import (
	"database/sql"
	"fmt"

	"github.com/aidanlsb/magpie/internal/filter"
	"github.com/aidanlsb/magpie/internal/sqlutil"
)

// listClauses compiles a filter into FROM/WHERE clauses for the record kind.
// An empty filter selects the bare base table.
func listClauses(kind filter.RecordKind, filterText string) (from, where string, err error) {
	if filterText == "" {
		return kind.BaseTable() + " AS " + filter.BaseTableAlias, "", nil
	}
	q, err := filter.Compile(kind, filterText)
	if err != nil {
		return "", "", err
	}
	return q.From, q.Where, nil
}

// listSQL assembles the final SELECT. Joins can multiply base rows, so the
// select is DISTINCT over the base columns; ordering by id keeps output
// stable.
func listSQL(columns, from, where string) string {
	stmt := "SELECT DISTINCT " + columns + " FROM " + from
	if where != "" {
		stmt += " WHERE " + where
	}
	return stmt + " ORDER BY " + filter.BaseTableAlias + ".id"
}

const artifactColumns = "table_0.id, table_0.type_id, table_0.uri, table_0.name, table_0.create_time_since_epoch, table_0.last_update_time_since_epoch, (SELECT name FROM Type WHERE Type.id = table_0.type_id)"

const recordColumns = "table_0.id, table_0.type_id, table_0.name, table_0.create_time_since_epoch, table_0.last_update_time_since_epoch, (SELECT name FROM Type WHERE Type.id = table_0.type_id)"

// ListArtifacts returns artifacts matching the filter, with properties
// attached. An empty filter returns every artifact.
func (s *Store) ListArtifacts(filterText string) ([]*Artifact, error) {
	from, where, err := listClauses(filter.KindArtifact, filterText)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(listSQL(artifactColumns, from, where))
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	artifacts, err := sqlutil.ScanRows(rows, func(rows *sql.Rows) (*Artifact, error) {
		a := &Artifact{}
		var typeName sql.NullString
		if err := rows.Scan(&a.ID, &a.TypeID, &a.URI, &a.Name, &a.CreateTimeSinceEpoch, &a.LastUpdateTimeSinceEpoch, &typeName); err != nil {
			return nil, err
		}
		a.Type = typeName.String
		return a, nil
	})
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(artifacts))
	for i, a := range artifacts {
		ids[i] = a.ID
	}
	sets, err := s.loadProperties(filter.KindArtifact, ids)
	if err != nil {
		return nil, err
	}
	for _, a := range artifacts {
		if ps := sets[a.ID]; ps != nil {
			a.Properties = ps.props
			a.CustomProperties = ps.custom
		}
	}
	return artifacts, nil
}

// ListExecutions returns executions matching the filter.
func (s *Store) ListExecutions(filterText string) ([]*Execution, error) {
	from, where, err := listClauses(filter.KindExecution, filterText)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(listSQL(recordColumns, from, where))
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}
	executions, err := sqlutil.ScanRows(rows, func(rows *sql.Rows) (*Execution, error) {
		e := &Execution{}
		var typeName sql.NullString
		if err := rows.Scan(&e.ID, &e.TypeID, &e.Name, &e.CreateTimeSinceEpoch, &e.LastUpdateTimeSinceEpoch, &typeName); err != nil {
			return nil, err
		}
		e.Type = typeName.String
		return e, nil
	})
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(executions))
	for i, e := range executions {
		ids[i] = e.ID
	}
	sets, err := s.loadProperties(filter.KindExecution, ids)
	if err != nil {
		return nil, err
	}
	for _, e := range executions {
		if ps := sets[e.ID]; ps != nil {
			e.Properties = ps.props
			e.CustomProperties = ps.custom
		}
	}
	return executions, nil
}

// ListContexts returns contexts matching the filter.
func (s *Store) ListContexts(filterText string) ([]*Context, error) {
	from, where, err := listClauses(filter.KindContext, filterText)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(listSQL(recordColumns, from, where))
	if err != nil {
		return nil, fmt.Errorf("failed to list contexts: %w", err)
	}
	contexts, err := sqlutil.ScanRows(rows, func(rows *sql.Rows) (*Context, error) {
		c := &Context{}
		var typeName sql.NullString
		if err := rows.Scan(&c.ID, &c.TypeID, &c.Name, &c.CreateTimeSinceEpoch, &c.LastUpdateTimeSinceEpoch, &typeName); err != nil {
			return nil, err
		}
		c.Type = typeName.String
		return c, nil
	})
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(contexts))
	for i, c := range contexts {
		ids[i] = c.ID
	}
	sets, err := s.loadProperties(filter.KindContext, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range contexts {
		if ps := sets[c.ID]; ps != nil {
			c.Properties = ps.props
			c.CustomProperties = ps.custom
		}
	}
	return contexts, nil
}

// propertySet groups the typed and custom properties of one record.
type propertySet struct {
	props  map[string]PropertyValue
	custom map[string]PropertyValue
}

// loadProperties fetches all properties for the given record ids in one query.
func (s *Store) loadProperties(kind filter.RecordKind, ids []int64) (map[int64]*propertySet, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders, args := sqlutil.InClauseArgs(ids)
	stmt := fmt.Sprintf(
		`SELECT %s, name, is_custom_property, int_value, double_value, string_value
		 FROM %s WHERE %s IN (%s)`,
		kind.RecordColumn(), kind.PropertyTable(), kind.RecordColumn(), placeholders)

	rows, err := s.db.Query(stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load properties: %w", err)
	}
	defer rows.Close()

	sets := make(map[int64]*propertySet)
	for rows.Next() {
		var (
			id       int64
			name     string
			isCustom int
			v        PropertyValue
		)
		if err := rows.Scan(&id, &name, &isCustom, &v.IntValue, &v.DoubleValue, &v.StringValue); err != nil {
			return nil, err
		}
		ps := sets[id]
		if ps == nil {
			ps = &propertySet{}
			sets[id] = ps
		}
		if isCustom == 1 {
			if ps.custom == nil {
				ps.custom = make(map[string]PropertyValue)
			}
			ps.custom[name] = v
		} else {
			if ps.props == nil {
				ps.props = make(map[string]PropertyValue)
			}
			ps.props[name] = v
		}
	}
	return sets, rows.Err()
}
