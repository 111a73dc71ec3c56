package repository_test

import (
	"context"
	"testing"

	"planora/internal/model"
	"planora/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	assert.NoError(t, err)

	return gormDB, mock
}

func TestProjectRepository_GetByID_Found(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	projectRepo := repository.NewProjectRepository(gormDB)

	projectID := uuid.New()
	ownerID := uuid.New()

	mock.ExpectQuery(`SELECT .* FROM "projects"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner_id", "priority"}).
			AddRow(projectID.String(), "Website Redesign", ownerID.String(), "HIGH"))

	project, err := projectRepo.GetByID(context.Background(), projectID)

	assert.NoError(t, err)
	assert.NotNil(t, project)
	assert.Equal(t, projectID, project.ID)
	assert.Equal(t, "Website Redesign", project.Name)
	assert.Equal(t, ownerID, project.OwnerID)
	assert.False(t, project.IsTrashed())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_GetByID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	projectRepo := repository.NewProjectRepository(gormDB)

	mock.ExpectQuery(`SELECT .* FROM "projects"`).
		WillReturnError(gorm.ErrRecordNotFound)

	project, err := projectRepo.GetByID(context.Background(), uuid.New())

	// Absence is not an error; callers map nil to NotFound.
	assert.NoError(t, err)
	assert.Nil(t, project)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_MoveToTrash(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	projectRepo := repository.NewProjectRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "projects" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := projectRepo.MoveToTrash(context.Background(), uuid.New())

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_MoveToTrash_AlreadyTrashed(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	projectRepo := repository.NewProjectRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "projects" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := projectRepo.MoveToTrash(context.Background(), uuid.New())

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_Restore(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	projectRepo := repository.NewProjectRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "projects" SET .* WHERE id = .* AND deleted_at IS NOT NULL`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := projectRepo.Restore(context.Background(), uuid.New())

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_Restore_NotInTrash(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	projectRepo := repository.NewProjectRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "projects" SET .* WHERE id = .* AND deleted_at IS NOT NULL`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := projectRepo.Restore(context.Background(), uuid.New())

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_Purge_CascadeOrder(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	projectRepo := repository.NewProjectRepository(gormDB)

	// Children before parents, all inside one transaction. Expectations are
	// matched in order, so a reordered delete fails the test.
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "comments"`).WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(`DELETE FROM "attachments"`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "tasks"`).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM "task_statuses"`).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM "project_members"`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "projects"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := projectRepo.Purge(context.Background(), uuid.New())

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_Purge_MissingProject(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	projectRepo := repository.NewProjectRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "comments"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM "attachments"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM "tasks"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM "task_statuses"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM "project_members"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM "projects"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := projectRepo.Purge(context.Background(), uuid.New())

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepository_Create_DuplicateIsConflict(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	memberRepo := repository.NewMemberRepository(gormDB)

	// A racing insert that slipped past the registry's pre-check hits the
	// (project_id, user_id) unique index; the violation surfaces as
	// ErrConflict, not a bare driver error.
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "project_members"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: `duplicate key value violates unique constraint "idx_project_user"`})
	mock.ExpectRollback()

	err := memberRepo.Create(context.Background(), &model.ProjectMember{
		ProjectID: uuid.New(),
		UserID:    uuid.New(),
		Role:      model.RoleMember,
	})

	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepository_CountByRole(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	memberRepo := repository.NewMemberRepository(gormDB)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "project_members"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	count, err := memberRepo.CountByRole(context.Background(), uuid.New(), "OWNER")

	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepository_Get_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	memberRepo := repository.NewMemberRepository(gormDB)

	mock.ExpectQuery(`SELECT .* FROM "project_members"`).
		WillReturnError(gorm.ErrRecordNotFound)

	member, err := memberRepo.Get(context.Background(), uuid.New(), uuid.New())

	assert.NoError(t, err)
	assert.Nil(t, member)
	assert.NoError(t, mock.ExpectationsWereMet())
}
