package repository

import (
	"github.com/google/uuid"

	"tonequest/internal/database"
)

// AssociationRepository handles student-teacher association records
type AssociationRepository struct {
	db *database.DB
}

// NewAssociationRepository creates a new association repository
func NewAssociationRepository(db *database.DB) *AssociationRepository {
	return &AssociationRepository{db: db}
}

// CreateAssociation links a student to a teacher. Creating an existing
// link is a no-op.
func (r *AssociationRepository) CreateAssociation(studentID, teacherID string) error {
	exists, err := r.HasAssociation(studentID, teacherID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	query := `
		INSERT INTO student_teacher_associations (id, student_id, teacher_id)
		VALUES (?, ?, ?)
	`
	_, err = r.db.Exec(query, uuid.New().String(), studentID, teacherID)
	return err
}

// HasAssociation reports whether the student is linked to the teacher
func (r *AssociationRepository) HasAssociation(studentID, teacherID string) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM student_teacher_associations
		WHERE student_id = ? AND teacher_id = ?
	`

	var count int
	if err := r.db.QueryRow(query, studentID, teacherID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListStudentIDsByTeacher retrieves the ids of all students associated
// with a teacher
func (r *AssociationRepository) ListStudentIDsByTeacher(teacherID string) ([]string, error) {
	query := `
		SELECT student_id
		FROM student_teacher_associations
		WHERE teacher_id = ?
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(query, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
