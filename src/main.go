package main

import (
	"campusgate/src/boot"
	"campusgate/src/config"
	"campusgate/src/directory"
	"campusgate/src/gatepass"
	"campusgate/src/lib"
	awslib "campusgate/src/lib/aws"
	"campusgate/src/lib/mailer"
	"campusgate/src/middlewares"
	"campusgate/src/notify"
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path"
	"regexp"
	"strconv"
	"syscall"
	"time"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

const (
	apiPrefix string = "/api/v1"
)

var notPastValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	datetime, err := time.Parse(config.TIME_PARSE_FORMAT, date)
	if err != nil {
		return false
	}
	return !time.Now().After(datetime)
}

func compareDateFields(fl validator.FieldLevel) (value time.Time, other time.Time, ok bool) {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return
	}
	value, err := time.Parse(config.TIME_PARSE_FORMAT, date)
	if err != nil {
		return value, other, false
	}
	field := fl.Parent().FieldByName(fl.Param())
	if !field.IsValid() {
		return value, other, false
	}
	fieldValue, ok := field.Interface().(string)
	if !ok {
		return
	}
	other, err = time.Parse(config.TIME_PARSE_FORMAT, fieldValue)
	if err != nil {
		return value, other, false
	}
	return value, other, true
}

// gtdate passes when the field is not before the named sibling field.
var gtfield validator.Func = func(fl validator.FieldLevel) bool {
	datetime, fielddatetime, ok := compareDateFields(fl)
	if !ok {
		return false
	}
	return !fielddatetime.After(datetime)
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("notpast", notPastValidatorFunc)
		v.RegisterValidation("gtdate", gtfield)
	}
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders)
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	return router
}

func maintenanceModeMiddleware(g *gin.Engine) *gin.Engine {
	g.Use(func(ctx *gin.Context) {
		mm := os.Getenv("MAINTENANCE_MODE")
		if mm == "" {
			return
		}
		on, err := strconv.ParseBool(mm)
		if err != nil || on {
			err := errors.New("server is under maintenance")
			log.Println(err.Error())
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, err.Error())
			return
		}
	})
	return g
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	apiv1 := g.Group(apiPrefix)
	return apiv1
}

func corsMiddleware() gin.HandlerFunc {
	if config.API_ENV == "local" {
		return cors.Default()
	}
	appHost := os.Getenv("APP_HOST")
	cc := cors.DefaultConfig()
	cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PATCH", "PUT", "DELETE", "HEAD")
	cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization")
	cc.AllowOriginFunc = func(origin string) bool {
		match, _ := regexp.MatchString(`(\w+.?)+\.amazonaws\.com$`, origin)
		if match {
			return true
		}
		if appHost != "" {
			match, _ = regexp.MatchString(appHost, origin)
			if match {
				return true
			}
		}
		match, _ = regexp.MatchString("app:mobile", origin)
		return match
	}
	cc.AllowCredentials = true
	cc.AllowAllOrigins = false
	return cors.New(cc)
}

// registerRoutes mounts the authenticated gate-pass API on router.
func registerRoutes(router *gin.Engine, svc *gatepass.Service, dir directory.Directory, jwtKey []byte) {
	authorized := apiv1Group(router)
	authorized.Use(middlewares.NewAuthMiddleware(dir, jwtKey))
	gatePassHandlers(authorized, svc)
}

func initLogger() {
	cwd, _ := os.Getwd()
	logDir := path.Join(cwd, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		log.Printf("Could not create log directory: %s\n", err.Error())
		return
	}
	gin.ForceConsoleColor()

	f, err := os.Create(path.Join(logDir, "api.log"))
	if err == nil {
		gin.DefaultWriter = io.MultiWriter(f, os.Stdout)
	}
	log.SetOutput(&lumberjack.Logger{
		Filename:   path.Join(logDir, "server.log"),
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	})
}

// newDirectories returns the live directory used for eligibility and routing
// and the directory used for auth and notification lookups, which is cached
// when redis is available.
func newDirectories(db *gorm.DB) (live directory.Directory, cached directory.Directory) {
	live = directory.NewGormDirectory(db)
	cached = live
	if rdb := lib.GetRedisClient(); rdb != nil {
		cached = directory.NewCachedDirectory(live, rdb, directory.DefaultCacheTTL)
	}
	return live, cached
}

func newDispatcher(db *gorm.DB, settings config.GatePassSettings) *notify.Dispatcher {
	channels := []notify.Channel{
		notify.NewMailChannel(mailer.New(), os.Getenv("MAIL_FROM"), os.Getenv("MAIL_FROM_NAME"), os.Getenv("APP_HOST")),
	}
	if client := lib.AWSGetSNSClient(); client != nil {
		sender := awslib.NewSNSSMSSender(client, os.Getenv("SMS_SENDER_ID"))
		channels = append(channels, notify.NewSMSChannel(sender, os.Getenv("SMS_COUNTRY_CODE"), nil))
	} else {
		log.Println("[notify] SNS unavailable, parent SMS disabled")
	}

	var retrier notify.Retrier
	if sched, err := lib.GetScheduler(); err == nil {
		retrier = notify.NewGocronRetrier(sched)
	}
	d := notify.NewDispatcher(notify.DispatcherConfig{
		Workers:     settings.NotifyWorkers,
		QueueSize:   settings.NotifyQueueSize,
		MaxAttempts: settings.NotifyMaxAttempts,
		RetryDelay:  settings.NotifyRetryDelay,
	}, retrier, notify.NewGormRecorder(db), channels...)
	d.Start()
	return d
}

func main() {
	apiEnv := os.Getenv("API_ENV")
	if apiEnv == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			panic(err)
		}
		config.API_ENV = apiEnv
	}
	initLogger()

	jwtKey := os.Getenv("JWT_SECRET")
	if jwtKey == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	boot.InitScheduler()
	defer boot.StopScheduler()
	boot.InitBroker(ctx, mailer.NewDirect())

	db := boot.InitDb()
	settings := config.LoadGatePassSettings()
	liveDir, dir := newDirectories(db)
	dispatcher := newDispatcher(db, settings)
	defer dispatcher.Close()

	svc := gatepass.NewService(
		gatepass.NewGormStore(db),
		liveDir,
		dispatcher,
		gatepass.WithSettings(settings),
		gatepass.WithRecipientDirectory(dir),
	)

	router := setupRouter()
	router.Use(corsMiddleware())
	registerValidators()
	router = maintenanceModeMiddleware(router)
	registerRoutes(router, svc, dir, []byte(jwtKey))

	srv := &http.Server{
		Addr:    ":9090",
		Handler: router,
	}
	go func() {
		var err error
		if os.Getenv("TLS_ENABLE") == "true" {
			cwd, _ := os.Getwd()
			certpath := path.Join(cwd, "certificates", "localhost.pem")
			keypath := path.Join(cwd, "certificates", "localhost-key.pem")
			err = srv.ListenAndServeTLS(certpath, keypath)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %s", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down server: %s\n", err.Error())
	}
}
