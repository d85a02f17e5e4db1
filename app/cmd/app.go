package cmd

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/threadline/storefront/app/configs"
	"github.com/threadline/storefront/app/repositories"
	"github.com/threadline/storefront/app/services"
	"gorm.io/gorm"
)

// App holds the repositories and services shared by the server and the CLI commands.
type App struct {
	Env configs.ENV
	DB  *gorm.DB

	ProductRepo  repositories.ProductRepositoryImpl
	CategoryRepo repositories.CategoryRepositoryImpl
	UserRepo     repositories.UserRepositoryImpl
	OrderRepo    repositories.OrderRepository

	OrderHub *services.OrderEventHub
	Storage  services.ObjectStorage

	ProductSvc  *services.ProductService
	ReviewSvc   *services.ReviewService
	AuthSvc     *services.AuthService
	OrderSvc    *services.OrderService
	CheckoutSvc *services.CheckoutService
	ReportSvc   *services.ReportService
	BillingSvc  *services.BillingService

	kafka *services.KafkaOrderPublisher
}

func NewApp(env configs.ENV) (*App, error) {
	db, err := configs.OpenConnection(env)
	if err != nil {
		return nil, err
	}

	a := &App{
		Env:          env,
		DB:           db,
		ProductRepo:  repositories.NewProductRepository(db),
		CategoryRepo: repositories.NewCategoryRepository(db),
		UserRepo:     repositories.NewUserRepository(db),
		OrderRepo:    repositories.NewOrderRepository(db),
		OrderHub:     services.NewOrderEventHub(),
		Storage:      services.NewLocalObjectStore(env.UploadDir, env.UploadBaseURL),
	}
	reviewRepo := repositories.NewReviewRepository(db)
	reconRepo := repositories.NewReconciliationRepository(db)
	validate := validator.New()

	gateway, err := services.NewPaymentGateway(env)
	if err != nil {
		if !errors.Is(err, services.ErrPaymentUnavailable) {
			return nil, err
		}
		log.Printf("❌ Prepaid checkout disabled: %v", err)
		gateway = nil
	}

	publishers := services.MultiPublisher{a.OrderHub}
	if len(env.KafkaBrokers) > 0 {
		a.kafka, err = services.NewKafkaOrderPublisher(env.KafkaBrokers, env.KafkaOrderTopic)
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, a.kafka)
	}
	mailCfg := services.Config{
		Host:     env.EmailHost,
		Port:     env.EmailPort,
		Username: env.EmailUsername,
		Password: env.EmailPassword,
		From:     env.EmailFrom,
	}
	if mailCfg.Enabled() {
		publishers = append(publishers, services.NewOrderMailNotifier(services.NewMailer(mailCfg), a.UserRepo))
	}

	a.ProductSvc = services.NewProductService(a.ProductRepo, a.CategoryRepo, reviewRepo, validate)
	a.ReviewSvc = services.NewReviewService(reviewRepo, a.ProductRepo, validate)
	a.AuthSvc = services.NewAuthService(a.UserRepo, validate)
	a.OrderSvc = services.NewOrderService(a.OrderRepo)
	a.CheckoutSvc = services.NewCheckoutService(a.ProductRepo, a.OrderRepo, reconRepo, gateway, publishers, env.CODThreshold)
	a.ReportSvc = services.NewReportService(a.OrderRepo, a.ProductRepo, a.CategoryRepo, a.UserRepo, env.Location())
	a.BillingSvc = services.NewBillingService(repositories.NewStoreSaleRepository(db), validate)

	return a, nil
}

func (a *App) Close() {
	if a.kafka != nil {
		a.kafka.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
}
