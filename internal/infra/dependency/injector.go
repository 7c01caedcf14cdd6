// Package dependency provides dependency injection for the application.
package dependency

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/finance-tracker/bookkeeping/config"
	"github.com/finance-tracker/bookkeeping/internal/application/adapter"
	"github.com/finance-tracker/bookkeeping/internal/application/usecase/budget"
	"github.com/finance-tracker/bookkeeping/internal/application/usecase/categorization"
	"github.com/finance-tracker/bookkeeping/internal/application/usecase/category"
	"github.com/finance-tracker/bookkeeping/internal/application/usecase/patternrule"
	"github.com/finance-tracker/bookkeeping/internal/application/usecase/recurring"
	"github.com/finance-tracker/bookkeeping/internal/application/usecase/transaction"
	"github.com/finance-tracker/bookkeeping/internal/infra/server/router"
	"github.com/finance-tracker/bookkeeping/internal/integration/adapters"
	"github.com/finance-tracker/bookkeeping/internal/integration/cache"
	"github.com/finance-tracker/bookkeeping/internal/integration/entrypoint/controller"
	"github.com/finance-tracker/bookkeeping/internal/integration/entrypoint/middleware"
	"github.com/finance-tracker/bookkeeping/internal/integration/persistence"
)

// Injector holds all application dependencies.
type Injector struct {
	Config      *config.Config
	DB          *gorm.DB
	Router      *router.Router
	RateLimiter *middleware.RateLimiter

	TransactionRepo adapter.TransactionRepository
	LearningRepo    adapter.LearningSignalRepository
	LearningBus     *adapters.AMQPLearningBus

	RunCategorization *categorization.RunCategorizationUseCase
	DetectRecurring   *recurring.DetectRecurringSeriesUseCase
	GetPerformance    *budget.GetPerformanceUseCase
}

// NewInjector creates a new dependency injector with all dependencies wired.
// redisClient and learningBus may be nil: categories are then read straight
// from the database and learning signals are recorded in-process.
func NewInjector(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, learningBus *adapters.AMQPLearningBus) *Injector {
	// Create repositories
	transactionRepo := persistence.NewTransactionRepository(db)
	categoryRepo := persistence.NewCategoryRepository(db)
	patternRuleRepo := persistence.NewPatternRuleRepository(db)
	budgetRepo := persistence.NewBudgetRepository(db)
	seriesRepo := persistence.NewRecurringSeriesRepository(db)

	var categoryCache adapter.CategoryCache
	if redisClient != nil {
		categoryCache = cache.NewCategoryCache(redisClient)
	}

	// Learning: corrections go to the broker when one is configured, otherwise
	// straight to the statistics store.
	var (
		learningRepo adapter.LearningSignalRepository
		busSink      adapter.LearningSink
		storeSink    adapter.LearningSink
	)
	if cfg.Learning.StoreEnabled {
		learningRepo = persistence.NewLearningSignalRepository(db)
		if learningBus != nil {
			busSink = learningBus
		} else {
			storeSink = adapters.NewStoreLearningSink(learningRepo)
		}
	}
	var learningSink adapter.LearningSink
	if busSink != nil || storeSink != nil {
		learningSink = adapters.NewFanOutLearningSink(busSink, storeSink)
	}

	var aiService adapter.AICategorizationService
	gemini := adapters.NewGeminiService(cfg.AI.GeminiAPIKey, cfg.AI.Model).WithEndpoint(cfg.AI.Endpoint)
	if cfg.AI.Enabled && gemini.IsAvailable() {
		aiService = gemini
	}

	// Shared loaders
	taxLoader := category.NewTaxonomyLoader(categoryRepo, categoryCache, cfg.Redis.CategoryCacheTTL)
	rulesLoader := patternrule.NewRuleSetLoader(patternRuleRepo)
	processingTracker := categorization.NewInMemoryProcessingTracker()

	// Create categorization use cases
	runCategorizationUseCase := categorization.NewRunCategorizationUseCase(
		transactionRepo,
		learningRepo,
		aiService,
		taxLoader,
		rulesLoader,
		processingTracker,
		categorization.Options{
			UseAI:          aiService != nil,
			LearnedMinHits: cfg.Learning.MinHits,
			BatchTimeout:   cfg.AI.Timeout,
		},
	)
	getStatusUseCase := categorization.NewGetStatusUseCase(transactionRepo, processingTracker)
	applyCorrectionUseCase := categorization.NewApplyCorrectionUseCase(transactionRepo, taxLoader, learningSink).
		WithNotifyTimeout(cfg.Learning.NotifyTimeout)

	// Create transaction use cases
	listTransactionsUseCase := transaction.NewListTransactionsUseCase(transactionRepo, taxLoader)

	// Create category use cases
	listCategoriesUseCase := category.NewListCategoriesUseCase(taxLoader)
	createCategoryUseCase := category.NewCreateCategoryUseCase(categoryRepo, taxLoader)
	updateCategoryUseCase := category.NewUpdateCategoryUseCase(categoryRepo, taxLoader)
	deleteCategoryUseCase := category.NewDeleteCategoryUseCase(categoryRepo, taxLoader)
	seedCategoriesUseCase := category.NewSeedDefaultCategoriesUseCase(categoryRepo, taxLoader)

	// Create pattern rule use cases
	listRulesUseCase := patternrule.NewListPatternRulesUseCase(patternRuleRepo)
	createRuleUseCase := patternrule.NewCreatePatternRuleUseCase(patternRuleRepo, taxLoader)
	deleteRuleUseCase := patternrule.NewDeletePatternRuleUseCase(patternRuleRepo)
	testPatternUseCase := patternrule.NewTestPatternUseCase(rulesLoader, taxLoader)

	// Create recurring and budget use cases
	now := func() time.Time { return time.Now().UTC() }
	detectRecurringUseCase := recurring.NewDetectRecurringSeriesUseCase(transactionRepo, seriesRepo, cfg.Engine.DetectionConfig(now()))
	listRecurringUseCase := recurring.NewListRecurringSeriesUseCase(seriesRepo)
	getPerformanceUseCase := budget.NewGetPerformanceUseCase(transactionRepo, budgetRepo, taxLoader, cfg.Engine.BudgetThresholds())
	setOverrideUseCase := budget.NewSetOverrideUseCase(transactionRepo, budgetRepo)
	clearOverrideUseCase := budget.NewClearOverrideUseCase(budgetRepo)

	// Create controllers
	var cacheHealthChecker func() bool
	if redisClient != nil {
		cacheHealthChecker = func() bool {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Ping(ctx).Err() == nil
		}
	}
	healthController := controller.NewHealthController(func() bool {
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, cacheHealthChecker, aiService != nil)

	controllers := router.Controllers{
		Health:         healthController,
		Transaction:    controller.NewTransactionController(listTransactionsUseCase, applyCorrectionUseCase),
		Categorization: controller.NewCategorizationController(runCategorizationUseCase, getStatusUseCase),
		Category: controller.NewCategoryController(
			listCategoriesUseCase,
			createCategoryUseCase,
			updateCategoryUseCase,
			deleteCategoryUseCase,
			seedCategoriesUseCase,
		),
		PatternRule: controller.NewPatternRuleController(
			listRulesUseCase,
			createRuleUseCase,
			deleteRuleUseCase,
			testPatternUseCase,
		),
		Recurring: controller.NewRecurringController(detectRecurringUseCase, listRecurringUseCase, now),
		Budget:    controller.NewBudgetController(getPerformanceUseCase, setOverrideUseCase, clearOverrideUseCase, now),
	}

	// Use higher rate limits for E2E/test environments to prevent flaky tests
	var rateLimiter *middleware.RateLimiter
	if cfg.Server.Environment == "e2e" || cfg.Server.Environment == "test" {
		rateLimiter = middleware.NewRateLimiterWithConfig(1000, time.Minute)
	} else {
		rateLimiter = middleware.NewRateLimiterWithConfig(cfg.Server.RateLimitRequests, cfg.Server.RateLimitWindow)
	}

	slog.Info("Dependencies initialized",
		"categoryCache", categoryCache != nil,
		"classifier", aiService != nil,
		"learningBus", learningBus != nil,
		"learningStore", cfg.Learning.StoreEnabled,
	)

	return &Injector{
		Config:      cfg,
		DB:          db,
		Router:      router.NewRouter(controllers, rateLimiter),
		RateLimiter: rateLimiter,

		TransactionRepo: transactionRepo,
		LearningRepo:    learningRepo,
		LearningBus:     learningBus,

		RunCategorization: runCategorizationUseCase,
		DetectRecurring:   detectRecurringUseCase,
		GetPerformance:    getPerformanceUseCase,
	}
}
