package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-advising/advising-api/internal/models"
)

// CourseRepository handles persistence of catalog courses and their declared
// prerequisite edges.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = `id, code, name, description, credits, department_id, semester, capacity, active, created_at, updated_at`

// FindByID returns a course by its ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE id = $1`, courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindByCode returns a course by its unique code.
func (r *CourseRepository) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE code = $1`, courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, code); err != nil {
		return nil, err
	}
	return &course, nil
}

// List returns courses filtered by the provided criteria alongside a total count.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error) {
	base := `FROM courses c
LEFT JOIN departments d ON d.id = c.department_id`
	var conditions []string
	var args []interface{}

	if filter.DepartmentID != "" {
		conditions = append(conditions, fmt.Sprintf("c.department_id = $%d", len(args)+1))
		args = append(args, filter.DepartmentID)
	}
	if filter.Semester != "" {
		conditions = append(conditions, fmt.Sprintf("(c.semester = $%d OR c.semester IS NULL)", len(args)+1))
		args = append(args, filter.Semester)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("c.active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(c.code ILIKE $%d OR c.name ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT c.id, c.code, c.name, c.description, c.credits, c.department_id, c.semester,
        c.capacity, c.active, c.created_at, c.updated_at,
        COALESCE(d.name, '') AS department_name,
        (SELECT COUNT(*) FROM student_courses sc WHERE sc.course_id = c.id AND sc.status = 'current') AS enrolled_count
        %s ORDER BY c.code LIMIT %d OFFSET %d`, base+clause, size, offset)

	var courses []models.CourseDetail
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}

	for i := range courses {
		prereqs, err := r.Prerequisites(ctx, courses[i].ID)
		if err != nil {
			return nil, 0, err
		}
		courses[i].Prerequisites = prereqs
	}
	return courses, total, nil
}

// Prerequisites returns the direct prerequisite edges declared for a course.
// The relation is not transitively closed; callers get exactly what the
// catalog declares.
func (r *CourseRepository) Prerequisites(ctx context.Context, courseID string) ([]models.CourseRef, error) {
	const query = `SELECT c.id, c.code, c.name
        FROM course_prerequisites cp
        JOIN courses c ON c.id = cp.prerequisite_course_id
        WHERE cp.course_id = $1
        ORDER BY c.code`
	var refs []models.CourseRef
	if err := r.db.SelectContext(ctx, &refs, query, courseID); err != nil {
		return nil, fmt.Errorf("load prerequisites: %w", err)
	}
	return refs, nil
}

// CurrentEnrollmentCount counts ledger rows holding a seat right now.
// Only status=current rows count against capacity.
func (r *CourseRepository) CurrentEnrollmentCount(ctx context.Context, courseID string) (int, error) {
	const query = `SELECT COUNT(*) FROM student_courses WHERE course_id = $1 AND status = 'current'`
	var count int
	if err := r.db.GetContext(ctx, &count, query, courseID); err != nil {
		return 0, fmt.Errorf("count current enrollments: %w", err)
	}
	return count, nil
}

// ActiveEnrollmentCount counts current and in-progress ledger rows referencing
// the course. Used to refuse catalog deletion.
func (r *CourseRepository) ActiveEnrollmentCount(ctx context.Context, courseID string) (int, error) {
	const query = `SELECT COUNT(*) FROM student_courses WHERE course_id = $1 AND status IN ('current', 'in_progress')`
	var count int
	if err := r.db.GetContext(ctx, &count, query, courseID); err != nil {
		return 0, fmt.Errorf("count active enrollments: %w", err)
	}
	return count, nil
}

// Create persists a new course and its prerequisite edges in one transaction.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course, prerequisiteIDs []string) (err error) {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin course transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertQuery = `INSERT INTO courses (id, code, name, description, credits, department_id, semester, capacity, active, created_at, updated_at)
        VALUES (:id, :code, :name, :description, :credits, :department_id, :semester, :capacity, :active, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insertQuery, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}

	if err = replacePrerequisites(ctx, tx, course.ID, prerequisiteIDs); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit course: %w", err)
	}
	return nil
}

// Update persists course fields and replaces the prerequisite edge set.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course, prerequisiteIDs []string) (err error) {
	course.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin course transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const updateQuery = `UPDATE courses SET code = :code, name = :name, description = :description,
        credits = :credits, department_id = :department_id, semester = :semester,
        capacity = :capacity, active = :active, updated_at = :updated_at
        WHERE id = :id`
	result, err := tx.NamedExecContext(ctx, updateQuery, course)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check course update rows: %w", err)
	}
	if rows == 0 {
		err = sql.ErrNoRows
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM course_prerequisites WHERE course_id = $1`, course.ID); err != nil {
		return fmt.Errorf("clear prerequisites: %w", err)
	}
	if err = replacePrerequisites(ctx, tx, course.ID, prerequisiteIDs); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit course: %w", err)
	}
	return nil
}

// Delete removes a course and its prerequisite edges. Callers are responsible
// for refusing deletion while active enrollments reference the course.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM course_prerequisites WHERE course_id = $1 OR prerequisite_course_id = $1`, id); err != nil {
		return fmt.Errorf("delete prerequisite edges: %w", err)
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check course delete rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func replacePrerequisites(ctx context.Context, tx *sqlx.Tx, courseID string, prerequisiteIDs []string) error {
	for _, prereqID := range prerequisiteIDs {
		if prereqID == "" || prereqID == courseID {
			continue
		}
		const query = `INSERT INTO course_prerequisites (course_id, prerequisite_course_id) VALUES ($1, $2)`
		if _, err := tx.ExecContext(ctx, query, courseID, prereqID); err != nil {
			return fmt.Errorf("insert prerequisite edge: %w", err)
		}
	}
	return nil
}
