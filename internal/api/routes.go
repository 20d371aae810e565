package api

import (
	"net/http"

	"github.com/slankgy89/fitness-coach-portal-sub000/internal/domain"
	"github.com/slankgy89/fitness-coach-portal-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// Services bundles everything SetupRoutes needs so main stays tidy.
type Services struct {
	Auth      service.AuthService
	Coach     service.CoachService
	Client    service.ClientService
	Exercise  service.ExerciseService
	Template  service.TemplateService
	Nutrition service.NutritionService
	Food      service.FoodService
	Schedule  service.ScheduleService
	Agreement service.AgreementService
}

func SetupRoutes(router *gin.Engine, jwtSecret string, svcs Services) {
	authHandler := NewAuthHandler(svcs.Auth)
	exerciseHandler := NewExerciseHandler(svcs.Exercise)
	templateHandler := NewTemplateHandler(svcs.Template)
	nutritionHandler := NewNutritionHandler(svcs.Nutrition)
	foodHandler := NewFoodHandler(svcs.Food)
	scheduleHandler := NewScheduleHandler(svcs.Schedule)
	agreementHandler := NewAgreementHandler(svcs.Agreement)
	clientHandler := NewClientHandler(svcs.Coach, svcs.Client)

	authMiddleware := AuthMiddleware(jwtSecret)
	coachOnly := RoleMiddleware(domain.RoleCoach)
	clientOnly := RoleMiddleware(domain.RoleClient)

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
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := c.Get(ContextUserRoleKey)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// --- Exercise Library (coach) ---
		exerciseGroup := protected.Group("/exercises", coachOnly)
		{
			exerciseGroup.POST("", exerciseHandler.CreateExercise)
			exerciseGroup.GET("", exerciseHandler.GetCoachExercises)
			exerciseGroup.PUT("/:exerciseId", exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("/:exerciseId", exerciseHandler.DeleteExercise)
		}

		// --- Workout Templates (coach) ---
		templateGroup := protected.Group("/templates", coachOnly)
		{
			templateGroup.POST("", templateHandler.CreateTemplate)
			templateGroup.GET("", templateHandler.GetTemplates)
			templateGroup.PUT("/:templateId", templateHandler.UpdateTemplate)
			templateGroup.DELETE("/:templateId", templateHandler.DeleteTemplate)

			templateGroup.GET("/:templateId/items", templateHandler.GetItems)
			templateGroup.POST("/:templateId/items", templateHandler.AddItem)
			templateGroup.DELETE("/:templateId/items/:itemId", templateHandler.RemoveItem)

			templateGroup.POST("/:templateId/items/:itemId/move", templateHandler.MoveItem)
			templateGroup.POST("/:templateId/groups/move", templateHandler.MoveGroup)
			templateGroup.PUT("/:templateId/items/order", templateHandler.ReorderItems)
		}

		// --- Nutrition Programs (coach) ---
		programGroup := protected.Group("/programs", coachOnly)
		{
			programGroup.POST("", nutritionHandler.CreateProgram)
			programGroup.GET("", nutritionHandler.GetPrograms)
			programGroup.PUT("/:programId", nutritionHandler.UpdateProgram)
			programGroup.DELETE("/:programId", nutritionHandler.DeleteProgram)

			programGroup.GET("/:programId/schedule", nutritionHandler.GetSchedule)
			programGroup.POST("/:programId/days", nutritionHandler.AddDay)
			programGroup.POST("/:programId/meals", nutritionHandler.AddMeal)
			programGroup.DELETE("/:programId/meals/:mealId", nutritionHandler.RemoveMeal)
			programGroup.POST("/:programId/meals/:mealId/move", nutritionHandler.MoveMeal)
			programGroup.PUT("/:programId/meals/order", nutritionHandler.ReorderMeals)
		}

		// --- Meal Items (coach) ---
		mealGroup := protected.Group("/meals", coachOnly)
		{
			mealGroup.GET("/:mealId/items", nutritionHandler.GetMealItems)
			mealGroup.POST("/:mealId/items", nutritionHandler.AddMealItem)
			mealGroup.DELETE("/:mealId/items/:itemId", nutritionHandler.RemoveMealItem)
			mealGroup.POST("/:mealId/items/:itemId/move", nutritionHandler.MoveMealItem)
			mealGroup.PUT("/:mealId/items/order", nutritionHandler.ReorderMealItems)
		}

		// --- Food Library (coach) ---
		foodGroup := protected.Group("/foods", coachOnly)
		{
			foodGroup.POST("", foodHandler.CreateFood)
			foodGroup.GET("", foodHandler.GetFoods)
			foodGroup.PUT("/:foodId", foodHandler.UpdateFood)
			foodGroup.DELETE("/:foodId", foodHandler.DeleteFood)
			foodGroup.POST("/import/usda", foodHandler.ImportUSDAFood)
		}

		// --- Coach: clients and their logs ---
		coachGroup := protected.Group("/coach", coachOnly)
		{
			coachGroup.POST("/clients", clientHandler.AddClient)
			coachGroup.GET("/clients", clientHandler.GetClients)
			coachGroup.GET("/workout-logs", clientHandler.GetClientLogs)

			coachGroup.POST("/slots", scheduleHandler.PublishSlot)
			coachGroup.GET("/slots", scheduleHandler.GetSlots)
			coachGroup.DELETE("/slots/:slotId", scheduleHandler.DeleteSlot)
			coachGroup.GET("/slots/:slotId/bookings", scheduleHandler.GetSlotBookings)

			coachGroup.POST("/agreements", agreementHandler.CreateAgreement)
			coachGroup.GET("/agreements", agreementHandler.GetAgreements)
			coachGroup.DELETE("/agreements/:agreementId", agreementHandler.DeleteAgreement)
			coachGroup.GET("/agreements/:agreementId/signatures", agreementHandler.GetSignatures)
			coachGroup.GET("/agreements/:agreementId/document", agreementHandler.GetDocumentURL)
		}

		// --- Client-side ---
		clientGroup := protected.Group("/client", clientOnly)
		{
			clientGroup.POST("/workout-logs", clientHandler.LogWorkout)
			clientGroup.GET("/workout-logs", clientHandler.GetMyLogs)

			clientGroup.POST("/slots/:slotId/bookings", scheduleHandler.BookSlot)
			clientGroup.GET("/bookings", scheduleHandler.GetMyBookings)
			clientGroup.DELETE("/bookings/:bookingId", scheduleHandler.CancelBooking)

			clientGroup.GET("/agreements/:agreementId", agreementHandler.GetAgreementForClient)
			clientGroup.POST("/agreements/:agreementId/signatures", agreementHandler.SignAgreement)
			clientGroup.GET("/agreements/:agreementId/document", agreementHandler.GetDocumentURL)
		}
	}
}
