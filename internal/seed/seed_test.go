package seed

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appModels "github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/app/repositories/memory"
	"github.com/yigit/classroom/internal/pkg/auth"
)

func TestCreateDemoUsers(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories()

	require.NoError(t, CreateDemoUsers(ctx, repos.Users, zerolog.Nop()))

	teacher, err := repos.Users.GetByEmail(ctx, "teacher@classroom.local")
	require.NoError(t, err)
	assert.Equal(t, appModels.UserTypeTeacher, teacher.Type)
	assert.Nil(t, teacher.Group)
	assert.True(t, auth.CheckPassword(teacher.PasswordHash, DemoPassword))

	student, err := repos.Users.GetByEmail(ctx, "student@classroom.local")
	require.NoError(t, err)
	assert.Equal(t, appModels.UserTypeStudent, student.Type)
	require.NotNil(t, student.Group)
	assert.Equal(t, "A1", *student.Group)

	// second run leaves the existing accounts alone
	require.NoError(t, CreateDemoUsers(ctx, repos.Users, zerolog.Nop()))
	again, err := repos.Users.GetByEmail(ctx, "teacher@classroom.local")
	require.NoError(t, err)
	assert.Equal(t, teacher.ID, again.ID)
}
