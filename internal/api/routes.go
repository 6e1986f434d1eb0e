package api

import (
	"net/http"

	"alcyxob/workout-tracker/internal/config"
	"alcyxob/workout-tracker/internal/domain" // Needed for RoleMiddleware
	"alcyxob/workout-tracker/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services bundles what the HTTP layer needs from the service layer.
type Services struct {
	Auth      service.AuthService
	Users     service.UserService
	Exercises service.ExerciseService
	Workouts  service.WorkoutService
	Tokens    service.TokenService
}

// NewRouter builds the engine with the standard middleware chain and all routes.
func NewRouter(cfg config.ServerConfig, svc Services, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(logger), CORS(cfg.AllowOrigins))
	SetupRoutes(router, svc, logger)
	return router
}

func SetupRoutes(router *gin.Engine, svc Services, logger *zap.Logger) {
	authHandler := NewAuthHandler(svc.Auth, logger)
	userHandler := NewUserHandler(svc.Users, logger)
	coachHandler := NewCoachHandler(svc.Users, logger)
	exerciseHandler := NewExerciseHandler(svc.Exercises, logger)
	workoutHandler := NewWorkoutHandler(svc.Workouts, logger)

	authMiddleware := AuthMiddleware(svc.Tokens, svc.Users, logger)
	coachOnly := RoleMiddleware(domain.RoleCoach)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.Me)

		// --- User Routes ---
		userGroup := protected.Group("/users")
		{
			userGroup.GET("", userHandler.ListUsers)
			userGroup.POST("", coachOnly, userHandler.CreateUser)
			userGroup.GET("/:id", userHandler.GetUser)
			// Self or coach, checked in the handler
			userGroup.PUT("/:id", userHandler.UpdateUser)
			userGroup.DELETE("/:id", coachOnly, userHandler.DeleteUser)
		}

		// --- Exercise Routes ---
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.GET("", exerciseHandler.ListExercises)
			exerciseGroup.POST("", coachOnly, exerciseHandler.CreateExercise)
			exerciseGroup.GET("/:id", exerciseHandler.GetExercise)
			exerciseGroup.PUT("/:id", coachOnly, exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("/:id", coachOnly, exerciseHandler.DeleteExercise)

			exerciseGroup.GET("/:id/media", exerciseHandler.GetMedia)
			exerciseGroup.POST("/:id/media", coachOnly, exerciseHandler.RequestMediaUpload)
			exerciseGroup.PUT("/:id/media", coachOnly, exerciseHandler.ConfirmMedia)
		}

		// --- Coach Specific Routes ---
		coachGroup := protected.Group("/coach")
		coachGroup.Use(coachOnly)
		{
			coachGroup.GET("/users", coachHandler.ListAthletes)
			coachGroup.GET("/coaches", coachHandler.ListCoaches)
		}

		// --- Workout Routes ---
		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.POST("", coachOnly, workoutHandler.CreateWorkout)
			workoutGroup.POST("/create-and-assign", coachOnly, workoutHandler.CreateAndAssignWorkout)
			workoutGroup.GET("/unassigned", coachOnly, workoutHandler.ListUnassigned)
			workoutGroup.GET("/user/:userId", workoutHandler.ListUserWorkouts)

			workoutGroup.GET("/:id", workoutHandler.GetWorkout)
			workoutGroup.PUT("/:id", coachOnly, workoutHandler.UpdateWorkout)
			workoutGroup.DELETE("/:id", coachOnly, workoutHandler.DeleteWorkout)
			workoutGroup.POST("/:id/assign", coachOnly, workoutHandler.AssignWorkout)
			workoutGroup.POST("/:id/exercises", coachOnly, workoutHandler.AddExercise)
			workoutGroup.POST("/:id/start", workoutHandler.StartWorkout)
			workoutGroup.POST("/:id/complete", workoutHandler.CompleteWorkout)

			workoutGroup.PUT("/exercises/:weId", coachOnly, workoutHandler.UpdateWorkoutExercise)
			workoutGroup.DELETE("/exercises/:weId", coachOnly, workoutHandler.RemoveWorkoutExercise)
		}
	}
}
