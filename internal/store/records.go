package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aidanlsb/magpie/internal/filter"
)

// PropertyValue holds one typed property value. Exactly one pointer is set.
type PropertyValue struct {
	IntValue    *int64
	DoubleValue *float64
	StringValue *string
}

// IntProperty builds an integer property value.
func IntProperty(v int64) PropertyValue {
	return PropertyValue{IntValue: &v}
}

// DoubleProperty builds a double property value.
func DoubleProperty(v float64) PropertyValue {
	return PropertyValue{DoubleValue: &v}
}

// StringProperty builds a string property value.
func StringProperty(v string) PropertyValue {
	return PropertyValue{StringValue: &v}
}

// MarshalJSON renders the value bare, without the pointer wrapper.
func (p PropertyValue) MarshalJSON() ([]byte, error) {
	switch {
	case p.IntValue != nil:
		return json.Marshal(*p.IntValue)
	case p.DoubleValue != nil:
		return json.Marshal(*p.DoubleValue)
	case p.StringValue != nil:
		return json.Marshal(*p.StringValue)
	default:
		return []byte("null"), nil
	}
}

// Display renders the value for human-facing output.
func (p PropertyValue) Display() string {
	switch {
	case p.IntValue != nil:
		return fmt.Sprintf("%d", *p.IntValue)
	case p.DoubleValue != nil:
		return fmt.Sprintf("%g", *p.DoubleValue)
	case p.StringValue != nil:
		return *p.StringValue
	default:
		return ""
	}
}

// TypeRecord is a registered record type.
type TypeRecord struct {
	ID   int64             `json:"id"`
	Name string            `json:"name"`
	Kind filter.RecordKind `json:"-"`
}

// Artifact is a stored artifact record with its properties attached.
type Artifact struct {
	ID                       int64                    `json:"id"`
	TypeID                   int64                    `json:"type_id"`
	Type                     string                   `json:"type"`
	URI                      string                   `json:"uri,omitempty"`
	Name                     string                   `json:"name,omitempty"`
	CreateTimeSinceEpoch     int64                    `json:"create_time_since_epoch"`
	LastUpdateTimeSinceEpoch int64                    `json:"last_update_time_since_epoch"`
	Properties               map[string]PropertyValue `json:"properties,omitempty"`
	CustomProperties         map[string]PropertyValue `json:"custom_properties,omitempty"`
}

// Execution is a stored execution record with its properties attached.
type Execution struct {
	ID                       int64                    `json:"id"`
	TypeID                   int64                    `json:"type_id"`
	Type                     string                   `json:"type"`
	Name                     string                   `json:"name,omitempty"`
	CreateTimeSinceEpoch     int64                    `json:"create_time_since_epoch"`
	LastUpdateTimeSinceEpoch int64                    `json:"last_update_time_since_epoch"`
	Properties               map[string]PropertyValue `json:"properties,omitempty"`
	CustomProperties         map[string]PropertyValue `json:"custom_properties,omitempty"`
}

// Context is a stored context record with its properties attached.
type Context struct {
	ID                       int64                    `json:"id"`
	TypeID                   int64                    `json:"type_id"`
	Type                     string                   `json:"type"`
	Name                     string                   `json:"name"`
	CreateTimeSinceEpoch     int64                    `json:"create_time_since_epoch"`
	LastUpdateTimeSinceEpoch int64                    `json:"last_update_time_since_epoch"`
	Properties               map[string]PropertyValue `json:"properties,omitempty"`
	CustomProperties         map[string]PropertyValue `json:"custom_properties,omitempty"`
}

// PutType registers a type name for the record kind, returning its id. Putting
// an already registered type is idempotent.
func (s *Store) PutType(name string, kind filter.RecordKind) (int64, error) {
	_, err := s.db.Exec(
		`INSERT INTO Type (name, kind) VALUES (?, ?) ON CONFLICT(name, kind) DO NOTHING`,
		name, int(kind))
	if err != nil {
		return 0, fmt.Errorf("failed to register type: %w", err)
	}
	return s.TypeID(name, kind)
}

// TypeID looks up a registered type by name and kind.
func (s *Store) TypeID(name string, kind filter.RecordKind) (int64, error) {
	var id int64
	err := s.db.QueryRow(
		`SELECT id FROM Type WHERE name = ? AND kind = ?`,
		name, int(kind)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s %q", ErrTypeNotFound, kind, name)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up type: %w", err)
	}
	return id, nil
}

// ListTypes returns all registered types for the record kind, ordered by name.
func (s *Store) ListTypes(kind filter.RecordKind) ([]TypeRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, name FROM Type WHERE kind = ? ORDER BY name`, int(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to list types: %w", err)
	}
	defer rows.Close()

	var out []TypeRecord
	for rows.Next() {
		t := TypeRecord{Kind: kind}
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// PutArtifact inserts an artifact and its properties, setting ID and the
// timestamps on the passed record.
func (s *Store) PutArtifact(a *Artifact) (int64, error) {
	now := time.Now().UnixMilli()
	a.CreateTimeSinceEpoch = now
	a.LastUpdateTimeSinceEpoch = now

	err := s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(
			`INSERT INTO Artifact (type_id, uri, name, create_time_since_epoch, last_update_time_since_epoch)
			 VALUES (?, ?, ?, ?, ?)`,
			a.TypeID, a.URI, a.Name, a.CreateTimeSinceEpoch, a.LastUpdateTimeSinceEpoch)
		if err != nil {
			return err
		}
		a.ID, err = res.LastInsertId()
		if err != nil {
			return err
		}
		return insertAllProperties(tx, filter.KindArtifact, a.ID, a.Properties, a.CustomProperties)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to put artifact: %w", err)
	}
	return a.ID, nil
}

// PutExecution inserts an execution and its properties.
func (s *Store) PutExecution(e *Execution) (int64, error) {
	now := time.Now().UnixMilli()
	e.CreateTimeSinceEpoch = now
	e.LastUpdateTimeSinceEpoch = now

	err := s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(
			`INSERT INTO Execution (type_id, name, create_time_since_epoch, last_update_time_since_epoch)
			 VALUES (?, ?, ?, ?)`,
			e.TypeID, e.Name, e.CreateTimeSinceEpoch, e.LastUpdateTimeSinceEpoch)
		if err != nil {
			return err
		}
		e.ID, err = res.LastInsertId()
		if err != nil {
			return err
		}
		return insertAllProperties(tx, filter.KindExecution, e.ID, e.Properties, e.CustomProperties)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to put execution: %w", err)
	}
	return e.ID, nil
}

// PutContext inserts a context and its properties. Context names are unique
// within a type.
func (s *Store) PutContext(c *Context) (int64, error) {
	now := time.Now().UnixMilli()
	c.CreateTimeSinceEpoch = now
	c.LastUpdateTimeSinceEpoch = now

	err := s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(
			`INSERT INTO Context (type_id, name, create_time_since_epoch, last_update_time_since_epoch)
			 VALUES (?, ?, ?, ?)`,
			c.TypeID, c.Name, c.CreateTimeSinceEpoch, c.LastUpdateTimeSinceEpoch)
		if err != nil {
			return err
		}
		c.ID, err = res.LastInsertId()
		if err != nil {
			return err
		}
		return insertAllProperties(tx, filter.KindContext, c.ID, c.Properties, c.CustomProperties)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to put context: %w", err)
	}
	return c.ID, nil
}

// GetArtifact fetches one artifact by id.
func (s *Store) GetArtifact(id int64) (*Artifact, error) {
	a := &Artifact{}
	err := s.db.QueryRow(
		`SELECT a.id, a.type_id, COALESCE(t.name, ''), a.uri, a.name, a.create_time_since_epoch, a.last_update_time_since_epoch
		 FROM Artifact a LEFT JOIN Type t ON a.type_id = t.id
		 WHERE a.id = ?`, id).
		Scan(&a.ID, &a.TypeID, &a.Type, &a.URI, &a.Name, &a.CreateTimeSinceEpoch, &a.LastUpdateTimeSinceEpoch)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: artifact %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}
	sets, err := s.loadProperties(filter.KindArtifact, []int64{a.ID})
	if err != nil {
		return nil, err
	}
	if ps := sets[a.ID]; ps != nil {
		a.Properties = ps.props
		a.CustomProperties = ps.custom
	}
	return a, nil
}

// GetExecution fetches one execution by id.
func (s *Store) GetExecution(id int64) (*Execution, error) {
	e := &Execution{}
	err := s.db.QueryRow(
		`SELECT e.id, e.type_id, COALESCE(t.name, ''), e.name, e.create_time_since_epoch, e.last_update_time_since_epoch
		 FROM Execution e LEFT JOIN Type t ON e.type_id = t.id
		 WHERE e.id = ?`, id).
		Scan(&e.ID, &e.TypeID, &e.Type, &e.Name, &e.CreateTimeSinceEpoch, &e.LastUpdateTimeSinceEpoch)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: execution %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get execution: %w", err)
	}
	sets, err := s.loadProperties(filter.KindExecution, []int64{e.ID})
	if err != nil {
		return nil, err
	}
	if ps := sets[e.ID]; ps != nil {
		e.Properties = ps.props
		e.CustomProperties = ps.custom
	}
	return e, nil
}

// GetContext fetches one context by id.
func (s *Store) GetContext(id int64) (*Context, error) {
	c := &Context{}
	err := s.db.QueryRow(
		`SELECT c.id, c.type_id, COALESCE(t.name, ''), c.name, c.create_time_since_epoch, c.last_update_time_since_epoch
		 FROM Context c LEFT JOIN Type t ON c.type_id = t.id
		 WHERE c.id = ?`, id).
		Scan(&c.ID, &c.TypeID, &c.Type, &c.Name, &c.CreateTimeSinceEpoch, &c.LastUpdateTimeSinceEpoch)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: context %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get context: %w", err)
	}
	sets, err := s.loadProperties(filter.KindContext, []int64{c.ID})
	if err != nil {
		return nil, err
	}
	if ps := sets[c.ID]; ps != nil {
		c.Properties = ps.props
		c.CustomProperties = ps.custom
	}
	return c, nil
}

// AddAttribution links an artifact to a context. Re-adding an existing link is
// a no-op.
func (s *Store) AddAttribution(contextID, artifactID int64) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO Attribution (context_id, artifact_id) VALUES (?, ?)`,
		contextID, artifactID)
	if err != nil {
		return fmt.Errorf("failed to add attribution: %w", err)
	}
	return nil
}

// AddAssociation links an execution to a context.
func (s *Store) AddAssociation(contextID, executionID int64) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO Association (context_id, execution_id) VALUES (?, ?)`,
		contextID, executionID)
	if err != nil {
		return fmt.Errorf("failed to add association: %w", err)
	}
	return nil
}

// AddParentContext records that parentID is a parent of contextID.
func (s *Store) AddParentContext(contextID, parentID int64) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO ParentContext (context_id, parent_context_id) VALUES (?, ?)`,
		contextID, parentID)
	if err != nil {
		return fmt.Errorf("failed to add parent context: %w", err)
	}
	return nil
}

func (s *Store) withTx(fn func(*sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func insertAllProperties(tx *sql.Tx, kind filter.RecordKind, id int64, props, custom map[string]PropertyValue) error {
	if err := insertProperties(tx, kind, id, props, 0); err != nil {
		return err
	}
	return insertProperties(tx, kind, id, custom, 1)
}

func insertProperties(tx *sql.Tx, kind filter.RecordKind, id int64, props map[string]PropertyValue, isCustom int) error {
	stmt := fmt.Sprintf(
		`INSERT INTO %s (%s, name, is_custom_property, int_value, double_value, string_value)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		kind.PropertyTable(), kind.RecordColumn())
	for name, v := range props {
		if _, err := tx.Exec(stmt, id, name, isCustom, v.IntValue, v.DoubleValue, v.StringValue); err != nil {
			return fmt.Errorf("property %q: %w", name, err)
		}
	}
	return nil
}
