package bdkeeper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file" // registers a migrate driver.
	_ "github.com/jackc/pgx/v5/stdlib"                   // registers a pgx driver.
	"github.com/wurt83ow/workreport/internal/models"
	"github.com/wurt83ow/workreport/internal/storage"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Log interface {
	Info(string, ...zapcore.Field)
}

type BDKeeper struct {
	conn *sql.DB
	log  Log
}

func NewBDKeeper(dsn func() string, log Log) *BDKeeper {
	addr := dsn()
	if addr == "" {
		log.Info("database dsn is empty")

		return nil
	}

	conn, err := sql.Open("pgx", addr)
	if err != nil {
		log.Info("Unable to connection to database: ", zap.Error(err))

		return nil
	}

	driver, err := postgres.WithInstance(conn, new(postgres.Config))
	if err != nil {
		log.Info("error getting driver: ", zap.Error(err))

		return nil
	}

	dir, err := os.Getwd()
	if err != nil {
		log.Info("error getting current directory: ", zap.Error(err))
	}

	// fix error test path
	mp := dir + "/migrations"

	var path string
	if _, err := os.Stat(mp); err != nil {
		path = "../../"
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%smigrations", path),
		"postgres",
		driver)
	if err != nil {
		log.Info("Error creating migration instance: ", zap.Error(err))

		return nil
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		log.Info("Error while performing migration: ", zap.Error(err))

		return nil
	}

	log.Info("Connected!")

	return &BDKeeper{
		conn: conn,
		log:  log,
	}
}

// SaveReport writes a full report snapshot in one transaction: the report
// row is upserted and its child rows are rewritten.
func (kp *BDKeeper) SaveReport(report models.DailyReport) error {
	ctx := context.Background()

	tx, err := kp.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reports (report_id, user_id, report_date, sequence, created_at, status)
		VALUES ($1, $2, $3::date, $4, $5, $6)
		ON CONFLICT (report_id) DO UPDATE SET status = EXCLUDED.status`,
		report.ReportID,
		report.UserID,
		report.ReportDate,
		report.Sequence,
		report.CreatedAt,
		report.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM report_tasks WHERE report_id = $1`, report.ReportID)
	if err != nil {
		return fmt.Errorf("failed to rewrite report tasks: %w", err)
	}

	for _, t := range report.SelectedTasks {
		var evalRating, evalComment sql.NullString
		if t.DirectorEvaluation != nil {
			evalRating = sql.NullString{String: string(t.DirectorEvaluation.Rating), Valid: true}
			evalComment = sql.NullString{String: t.DirectorEvaluation.Comment, Valid: true}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO report_tasks (
				report_id, task_id, title, description, priority, comment,
				start_time, end_time, eval_rating, eval_comment
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			report.ReportID, t.TaskID, t.Title, t.Description, t.Priority, t.Comment,
			t.StartTime, t.EndTime, evalRating, evalComment,
		)
		if err != nil {
			return fmt.Errorf("failed to save report task: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM adhoc_tasks WHERE report_id = $1`, report.ReportID)
	if err != nil {
		return fmt.Errorf("failed to rewrite adhoc tasks: %w", err)
	}

	for _, a := range report.AdHocTasks {
		var rating sql.NullString
		if a.DirectorRating != nil {
			rating = sql.NullString{String: string(*a.DirectorRating), Valid: true}
		}

		var selfScore, approvedScore sql.NullFloat64
		if a.SelfScore != nil {
			selfScore = sql.NullFloat64{Float64: *a.SelfScore, Valid: true}
		}

		if a.ApprovedScore != nil {
			approvedScore = sql.NullFloat64{Float64: *a.ApprovedScore, Valid: true}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO adhoc_tasks (
				adhoc_id, report_id, content, priority, comment, self_score,
				start_time, end_time, approved, approved_score, director_rating, director_comment
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			a.ID, report.ReportID, a.Content, a.Priority, a.Comment, selfScore,
			a.StartTime, a.EndTime, a.Approved, approvedScore, rating, a.DirectorComment,
		)
		if err != nil {
			return fmt.Errorf("failed to save adhoc task: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report: %w", err)
	}

	return nil
}

func (kp *BDKeeper) DeleteReport(reportID string) error {
	ctx := context.Background()

	res, err := kp.conn.ExecContext(ctx, `DELETE FROM reports WHERE report_id = $1`, reportID)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}

	if affected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (kp *BDKeeper) LoadReports() (storage.StorageReports, error) {
	ctx := context.Background()

	data := make(storage.StorageReports)

	rows, err := kp.conn.QueryContext(ctx, `
	SELECT
		report_id,
		user_id,
		to_char(report_date, 'YYYY-MM-DD'),
		sequence,
		created_at,
		status
	FROM
		reports`)
	if err != nil {
		return nil, fmt.Errorf("failed to load reports: %w", err)
	}

	defer rows.Close()

	for rows.Next() {
		var m models.DailyReport

		err := rows.Scan(
			&m.ReportID,
			&m.UserID,
			&m.ReportDate,
			&m.Sequence,
			&m.CreatedAt,
			&m.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load reports: %w", err)
		}

		m.SelectedTasks = make([]models.SelectedTaskEntry, 0)
		m.AdHocTasks = make([]models.AdHocTaskEntry, 0)
		data[m.ReportID] = m
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load reports: %w", err)
	}

	if err := kp.loadReportTasks(ctx, data); err != nil {
		return nil, err
	}

	if err := kp.loadAdHocTasks(ctx, data); err != nil {
		return nil, err
	}

	return data, nil
}

func (kp *BDKeeper) loadReportTasks(ctx context.Context, data storage.StorageReports) error {
	rows, err := kp.conn.QueryContext(ctx, `
	SELECT
		report_id,
		task_id,
		title,
		description,
		priority,
		comment,
		start_time,
		end_time,
		eval_rating,
		eval_comment
	FROM
		report_tasks`)
	if err != nil {
		return fmt.Errorf("failed to load report tasks: %w", err)
	}

	defer rows.Close()

	for rows.Next() {
		var (
			reportID    string
			t           models.SelectedTaskEntry
			evalRating  sql.NullString
			evalComment sql.NullString
		)

		err := rows.Scan(
			&reportID,
			&t.TaskID,
			&t.Title,
			&t.Description,
			&t.Priority,
			&t.Comment,
			&t.StartTime,
			&t.EndTime,
			&evalRating,
			&evalComment,
		)
		if err != nil {
			return fmt.Errorf("failed to load report tasks: %w", err)
		}

		if evalRating.Valid {
			t.DirectorEvaluation = &models.Evaluation{
				Rating:  models.Rating(evalRating.String),
				Comment: evalComment.String,
			}
		}

		r, exists := data[reportID]
		if !exists {
			continue
		}

		r.SelectedTasks = append(r.SelectedTasks, t)
		data[reportID] = r
	}

	return rows.Err()
}

func (kp *BDKeeper) loadAdHocTasks(ctx context.Context, data storage.StorageReports) error {
	rows, err := kp.conn.QueryContext(ctx, `
	SELECT
		report_id,
		adhoc_id,
		content,
		priority,
		comment,
		self_score,
		start_time,
		end_time,
		approved,
		approved_score,
		director_rating,
		director_comment
	FROM
		adhoc_tasks`)
	if err != nil {
		return fmt.Errorf("failed to load adhoc tasks: %w", err)
	}

	defer rows.Close()

	for rows.Next() {
		var (
			reportID                 string
			a                        models.AdHocTaskEntry
			selfScore, approvedScore sql.NullFloat64
			rating                   sql.NullString
		)

		err := rows.Scan(
			&reportID,
			&a.ID,
			&a.Content,
			&a.Priority,
			&a.Comment,
			&selfScore,
			&a.StartTime,
			&a.EndTime,
			&a.Approved,
			&approvedScore,
			&rating,
			&a.DirectorComment,
		)
		if err != nil {
			return fmt.Errorf("failed to load adhoc tasks: %w", err)
		}

		if selfScore.Valid {
			v := selfScore.Float64
			a.SelfScore = &v
		}

		if approvedScore.Valid {
			v := approvedScore.Float64
			a.ApprovedScore = &v
		}

		if rating.Valid {
			r := models.Rating(rating.String)
			a.DirectorRating = &r
		}

		r, exists := data[reportID]
		if !exists {
			continue
		}

		r.AdHocTasks = append(r.AdHocTasks, a)
		data[reportID] = r
	}

	return rows.Err()
}

// SaveDepartmentEvaluation upserts the evaluation for (department, date).
func (kp *BDKeeper) SaveDepartmentEvaluation(eval models.DepartmentEvaluation) error {
	ctx := context.Background()

	_, err := kp.conn.ExecContext(ctx, `
		INSERT INTO department_evaluations (department_id, eval_date, rating, comment, updated_at)
		VALUES ($1, $2::date, $3, $4, $5)
		ON CONFLICT (department_id, eval_date)
		DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, updated_at = EXCLUDED.updated_at`,
		eval.DepartmentID,
		eval.Date,
		eval.Rating,
		eval.Comment,
		eval.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save department evaluation: %w", err)
	}

	return nil
}

func (kp *BDKeeper) LoadDepartmentEvaluations() (storage.StorageDeptEvals, error) {
	ctx := context.Background()

	rows, err := kp.conn.QueryContext(ctx, `
	SELECT
		department_id,
		to_char(eval_date, 'YYYY-MM-DD'),
		rating,
		comment,
		updated_at
	FROM
		department_evaluations`)
	if err != nil {
		return nil, fmt.Errorf("failed to load department evaluations: %w", err)
	}

	defer rows.Close()

	data := make(storage.StorageDeptEvals)

	for rows.Next() {
		var m models.DepartmentEvaluation

		err := rows.Scan(
			&m.DepartmentID,
			&m.Date,
			&m.Rating,
			&m.Comment,
			&m.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load department evaluations: %w", err)
		}

		key := fmt.Sprintf("%d %s", m.DepartmentID, m.Date)
		data[key] = m
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load department evaluations: %w", err)
	}

	return data, nil
}

func (kp *BDKeeper) Ping() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := kp.conn.PingContext(ctx); err != nil {
		return false
	}

	return true
}

func (kp *BDKeeper) Close() bool {
	kp.conn.Close()

	return true
}
