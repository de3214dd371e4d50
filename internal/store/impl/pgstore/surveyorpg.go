package pgstore

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/phuslu/log"

	"nuha.dev/surtrack/internal/model"
)

// SurveyorStore holds the profile directory queries. Kept on its own
// receiver, Store already has a Save for location samples.
type SurveyorStore struct {
	db  *pgxpool.Pool
	log log.Logger
}

func NewSurveyorStore(db *pgxpool.Pool) *SurveyorStore {
	o := &SurveyorStore{}
	o.db = db
	o.log = log.DefaultLogger
	o.log.Context = log.NewContext(nil).Str("module", "pgstore").Value()
	return o
}

func (st *SurveyorStore) Filter(ctx context.Context, city, project string) ([]*model.Surveyor, error) {
	var rows pgx.Rows
	var err error
	base := `SELECT id,name,city,project_name,username FROM surveyor`
	if city != "" && project != "" {
		rows, err = st.db.Query(ctx, base+` WHERE city = $1 AND project_name = $2`, city, project)
	} else if city != "" {
		rows, err = st.db.Query(ctx, base+` WHERE city = $1`, city)
	} else if project != "" {
		rows, err = st.db.Query(ctx, base+` WHERE project_name = $1`, project)
	} else {
		rows, err = st.db.Query(ctx, base)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	surveyors := make([]*model.Surveyor, 0)
	for rows.Next() {
		s := &model.Surveyor{}
		err := rows.Scan(&s.ID, &s.Name, &s.City, &s.ProjectName, &s.Username)
		if err != nil {
			return nil, err
		}
		surveyors = append(surveyors, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return surveyors, nil
}

func (st *SurveyorStore) FindByUsername(ctx context.Context, username string) (*model.Surveyor, error) {
	sqlStmt := `SELECT id,name,city,project_name,username,"password" FROM surveyor WHERE username = $1`
	row := st.db.QueryRow(ctx, sqlStmt, username)
	s := &model.Surveyor{}
	err := row.Scan(&s.ID, &s.Name, &s.City, &s.ProjectName, &s.Username, &s.Password)
	if err == pgx.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return s, nil
}

func (st *SurveyorStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	row := st.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM surveyor WHERE username = $1)`, username)
	var exists bool
	err := row.Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// Save upserts a profile keyed by id. The password column is left
// untouched when the incoming profile carries none.
func (st *SurveyorStore) Save(ctx context.Context, s *model.Surveyor) error {
	sqlStmt := `INSERT INTO surveyor (id,name,city,project_name,username,"password")
	VALUES($1,$2,$3,$4,$5,$6)
	ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name, city = EXCLUDED.city, project_name = EXCLUDED.project_name,
	username = EXCLUDED.username,
	"password" = CASE WHEN EXCLUDED."password" = '' THEN surveyor."password" ELSE EXCLUDED."password" END`
	_, err := st.db.Exec(ctx, sqlStmt, s.ID, s.Name, s.City, s.ProjectName, s.Username, s.Password)
	if err != nil {
		st.log.Error().Err(err).Str("surveyor_id", s.ID).Msg("surveyor upsert failed")
		return err
	}
	return nil
}
