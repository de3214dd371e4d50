package pgstore

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/phuslu/log"

	"nuha.dev/surtrack/internal/model"
)

// Store implements both the sample store and the surveyor directory
// on top of Postgres. The location_track table carries a PostGIS point
// column derived from (longitude, latitude) on insert.
type Store struct {
	db  *pgxpool.Pool
	log log.Logger
}

func NewStore(db *pgxpool.Pool) *Store {
	o := &Store{}
	o.db = db
	o.log = log.DefaultLogger
	o.log.Context = log.NewContext(nil).Str("module", "pgstore").Value()
	return o
}

func (st *Store) Save(ctx context.Context, s *model.LocationSample) error {
	sqlStmt := `INSERT INTO location_track (surveyor_id,latitude,longitude,"timestamp",geom)
	VALUES($1,$2,$3,$4,ST_SetSRID(ST_MakePoint($3,$2),4326))`
	t0 := time.Now()
	_, err := st.db.Exec(ctx, sqlStmt, s.SurveyorID, s.Latitude, s.Longitude, s.Timestamp)
	if err != nil {
		st.log.Error().Err(err).Str("surveyor_id", s.SurveyorID).Msg("sample insert failed")
		return err
	}
	st.log.Debug().Str("surveyor_id", s.SurveyorID).Dur("time_taken", time.Since(t0)).Msg("sample stored")
	return nil
}

func (st *Store) Latest(ctx context.Context, surveyorID string) (*model.LocationSample, error) {
	sqlStmt := `SELECT surveyor_id,latitude,longitude,"timestamp" FROM location_track
	WHERE surveyor_id = $1 ORDER BY "timestamp" DESC LIMIT 1`
	row := st.db.QueryRow(ctx, sqlStmt, surveyorID)
	s := &model.LocationSample{}
	err := row.Scan(&s.SurveyorID, &s.Latitude, &s.Longitude, &s.Timestamp)
	if err == pgx.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	s.Geom = &model.Point{Longitude: s.Longitude, Latitude: s.Latitude}
	return s, nil
}

func (st *Store) History(ctx context.Context, surveyorID string, start, end *time.Time) ([]*model.LocationSample, error) {
	var rows pgx.Rows
	var err error
	base := `SELECT surveyor_id,latitude,longitude,"timestamp" FROM location_track WHERE surveyor_id = $1`
	order := ` ORDER BY "timestamp" ASC`
	if start != nil && end != nil {
		rows, err = st.db.Query(ctx, base+` AND "timestamp" BETWEEN $2 AND $3`+order, surveyorID, *start, *end)
	} else if start != nil {
		rows, err = st.db.Query(ctx, base+` AND "timestamp" >= $2`+order, surveyorID, *start)
	} else if end != nil {
		rows, err = st.db.Query(ctx, base+` AND "timestamp" <= $2`+order, surveyorID, *end)
	} else {
		rows, err = st.db.Query(ctx, base+order, surveyorID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	samples := make([]*model.LocationSample, 0)
	for rows.Next() {
		s := &model.LocationSample{}
		err := rows.Scan(&s.SurveyorID, &s.Latitude, &s.Longitude, &s.Timestamp)
		if err != nil {
			return nil, err
		}
		s.Geom = &model.Point{Longitude: s.Longitude, Latitude: s.Latitude}
		samples = append(samples, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	st.log.Debug().Str("surveyor_id", surveyorID).Int("length", len(samples)).Msg("history query")
	return samples, nil
}
