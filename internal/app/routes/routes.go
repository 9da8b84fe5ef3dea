package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/classroom/internal/app/controllers"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/app/models/dto"
	"github.com/yigit/classroom/internal/middleware"
	"github.com/yigit/classroom/internal/pkg/websocket"
)

// Controllers groups every HTTP handler the router mounts
type Controllers struct {
	Auth       *controllers.AuthController
	User       *controllers.UserController
	Course     *controllers.CourseController
	Absence    *controllers.AbsenceController
	Homework   *controllers.HomeworkController
	Submission *controllers.SubmissionController
	Post       *controllers.PostController
	Upload     *controllers.UploadController
	Feed       *websocket.Handler
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, ctrl Controllers, authMiddleware *middleware.AuthMiddleware) {
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/signup", ctrl.Auth.SignUp)
		auth.POST("/signin", ctrl.Auth.SignIn)
		auth.POST("/refresh", ctrl.Auth.RefreshToken)
	}

	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}))
	})

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	teacherOnly := authMiddleware.RoleRequired(models.UserTypeTeacher)
	studentOnly := authMiddleware.RoleRequired(models.UserTypeStudent)

	authenticated.GET("/users/me", ctrl.User.GetProfile)

	files := authenticated.Group("/files")
	{
		files.POST("/upload", ctrl.Upload.Upload)
		files.GET("/:fileId", ctrl.Upload.Download)
	}

	courses := authenticated.Group("/courses")
	{
		courses.POST("", teacherOnly, ctrl.Course.CreateCourse)
		courses.GET("/my-courses", teacherOnly, ctrl.Course.ListMyCourses)
		courses.GET("/my-enrolled-courses", studentOnly, ctrl.Course.ListEnrolledCourses)
		courses.POST("/join", studentOnly, ctrl.Course.JoinByCode)
		courses.POST("/:id/join", studentOnly, ctrl.Course.JoinByInvitation)
		courses.DELETE("/:id", teacherOnly, ctrl.Course.ArchiveCourse)
		courses.GET("/:id/students", ctrl.Course.ListStudents)
		courses.GET("/:id/ws", ctrl.Feed.HandleConnection)

		// Posts live under courses; the service checks course ownership
		courses.POST("/:id/posts", teacherOnly, ctrl.Post.CreatePost)
		courses.GET("/:id/posts", ctrl.Post.ListPosts)
		courses.GET("/posts/:postId", ctrl.Post.GetPost)
		courses.DELETE("/posts/:postId", teacherOnly, ctrl.Post.DeletePost)
	}

	comments := authenticated.Group("/comments")
	{
		comments.POST("", ctrl.Post.CreateComment)
		comments.GET("/post/:postId", ctrl.Post.ListComments)
		comments.DELETE("/:id", ctrl.Post.DeleteComment)
	}

	absences := authenticated.Group("/absences")
	{
		teacher := absences.Group("/teacher", teacherOnly)
		{
			teacher.POST("", ctrl.Absence.CreateAbsence)
			teacher.GET("", ctrl.Absence.ListTeacherAbsences)
			teacher.PATCH("/:id/validate", ctrl.Absence.ValidateAbsence)
			teacher.PATCH("/:id/reject", ctrl.Absence.RejectAbsence)
			teacher.DELETE("/:id", ctrl.Absence.DeleteAbsence)
			teacher.GET("/courses/:courseId/counts", ctrl.Absence.CourseStudentCounts)
		}

		student := absences.Group("/student", studentOnly)
		{
			student.GET("", ctrl.Absence.ListStudentAbsences)
			student.PATCH("/:id/justify", ctrl.Absence.JustifyAbsence)
			student.GET("/absence-count-course", ctrl.Absence.CountForCourse)
			student.GET("/summary", ctrl.Absence.StudentSummary)
			student.GET("/unjustified-count", ctrl.Absence.UnjustifiedCount)
		}
	}

	homework := authenticated.Group("/homework")
	{
		homework.POST("", teacherOnly, ctrl.Homework.CreateHomework)
		homework.GET("", ctrl.Homework.ListMyHomework)
		homework.GET("/course/:courseId", ctrl.Homework.ListCourseHomework)
		homework.GET("/:id", ctrl.Homework.GetHomework)
		homework.PATCH("/:id", teacherOnly, ctrl.Homework.UpdateHomework)
		homework.DELETE("/:id", teacherOnly, ctrl.Homework.DeleteHomework)
	}

	submissions := authenticated.Group("/homework-submissions")
	{
		submissions.POST("", studentOnly, ctrl.Submission.Submit)
		submissions.GET("/homework/:homeworkId/mine", studentOnly, ctrl.Submission.GetMine)
		submissions.DELETE("/homework/:homeworkId", studentOnly, ctrl.Submission.Delete)
		submissions.GET("/homework/:homeworkId", teacherOnly, ctrl.Submission.Roster)
		submissions.PATCH("/:id/grade", ctrl.Submission.Grade)
	}
}
