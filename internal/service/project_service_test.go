package service

import (
	"context"
	"testing"

	"capsort/internal/models"
	"capsort/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projectInput(title, author string) validation.ProjectInput {
	return validation.ProjectInput{
		Title:   title,
		Author:  author,
		Year:    2023,
		Field:   "IoT",
		FileURL: "https://example.com/paper.pdf",
	}
}

func TestProjectService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.adminCtx()

	p, err := env.projects.Create(ctx, admin, projectInput(" Flood Sensor Mesh ", "Kim Lee"))
	require.NoError(t, err)
	assert.Equal(t, "Flood Sensor Mesh", p.Title)
	assert.Equal(t, env.admin.ID, p.UploadedBy)
	assert.Equal(t, models.ProjectStatusActive, p.Status)

	_, err = env.projects.Create(ctx, admin, projectInput("Flood Sensor Mesh", "Kim Lee"))
	requireCode(t, err, models.CodeConflict)

	// same title by another author is a different paper
	other, err := env.projects.Create(ctx, admin, projectInput("Flood Sensor Mesh", "Tom Ng"))
	require.NoError(t, err)

	in := projectInput("Flood Sensor Mesh v2", "Kim Lee")
	in.Field = "Database"
	updated, err := env.projects.Update(ctx, admin, p.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Flood Sensor Mesh v2", updated.Title)
	assert.Equal(t, "Database", updated.Field)

	_, err = env.projects.Update(ctx, admin, other.ID, projectInput("Flood Sensor Mesh v2", "Kim Lee"))
	requireCode(t, err, models.CodeConflict)

	_, err = env.projects.Update(ctx, admin, 9999, projectInput("X", "Y"))
	requireCode(t, err, models.CodeNotFound)

	require.NoError(t, env.projects.Delete(ctx, admin, p.ID))
	requireCode(t, env.projects.Delete(ctx, admin, p.ID), models.CodeNotFound)

	_, err = env.projects.Update(ctx, admin, p.ID, in)
	requireCode(t, err, models.CodeNotFound)

	trash, err := env.projects.ListTrash(ctx, admin, models.ProjectFilter{})
	require.NoError(t, err)
	require.Len(t, trash.Items, 1)
	assert.True(t, trash.Items[0].IsDeleted)
	assert.NotNil(t, trash.Items[0].DeletedAt)

	// an active duplicate blocks the restore
	dup, err := env.projects.Create(ctx, admin, projectInput("Flood Sensor Mesh v2", "Kim Lee"))
	require.NoError(t, err)
	_, err = env.projects.Restore(ctx, admin, p.ID)
	requireCode(t, err, models.CodeConflict)

	require.NoError(t, env.projects.Delete(ctx, admin, dup.ID))
	restored, err := env.projects.Restore(ctx, admin, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusActive, restored.Status)
	assert.Nil(t, restored.DeletedAt)

	_, err = env.projects.Restore(ctx, admin, p.ID)
	requireCode(t, err, models.CodeNotFound)
}

func TestProjectService_RequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.projects.Create(ctx, env.studentCtx(), projectInput("T", "A"))
	requireCode(t, err, models.CodeForbidden)

	_, err = env.projects.Create(ctx, models.GuestContext(), projectInput("T", "A"))
	requireCode(t, err, models.CodeUnauthorized)

	requireCode(t, env.projects.Delete(ctx, env.studentCtx(), 1), models.CodeForbidden)

	_, err = env.projects.ListTrash(ctx, env.studentCtx(), models.ProjectFilter{})
	requireCode(t, err, models.CodeForbidden)
}

func TestProjectService_ValidatesInput(t *testing.T) {
	env := newTestEnv(t)

	in := projectInput("", "Kim Lee")
	in.FileURL = "nope"
	_, err := env.projects.Create(context.Background(), env.adminCtx(), in)
	requireCode(t, err, models.CodeValidation)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Len(t, appErr.Fields, 2)
}
