package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/asdine/storm/v3"
	"github.com/caarlos0/env/v6"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/jessevdk/go-flags"
	"github.com/mattn/go-isatty"

	"github.com/CodedInternet/gowemos/comms"
	"github.com/CodedInternet/gowemos/onboard"
	"github.com/CodedInternet/gowemos/onboard/i2cbus"
)

type EnvConfig struct {
	CONFIG     string `env:"GOWEMOS_CONFIG" envDefault:"./shields.yaml"`
	DB_PATH    string `env:"GOWEMOS_DB" envDefault:"./tmp/dev.db"`
	JWT_SECRET string `env:"GOWEMOS_JWT_SECRET"`
	JWT_ISSUER string `env:"GOWEMOS_JWT_ISSUER" envDefault:"DEV"`
	DEBUG      bool   `env:"DEBUG" envDefault:"false"`
	HTMLDIR    string `env:"GOWEMOS_HTMLDIR"`
	DB         *storm.DB
	Device     *onboard.MotorShields
	Conductor  *comms.Conductor
}

// jwtSecret is the HMAC key for issued tokens. Without a configured secret a
// random one is generated at startup, so tokens do not survive a restart.
func (e *EnvConfig) jwtSecret() []byte {
	return []byte(e.JWT_SECRET)
}

type ServeCommand struct {
	Listen  string `long:"listen" default:"0.0.0.0:8080" description:"ip:port to listen on"`
	Sim     bool   `long:"sim" description:"Use the simulated bus instead of hardware"`
	NoShell bool   `long:"no-shell" description:"Do not start the development shell, it only runs on a terminal"`
}

type ShellCommand struct {
	Sim bool `long:"sim" description:"Use the simulated bus instead of hardware"`
}

type Options struct {
	Serve ServeCommand `command:"serve" description:"Serve the HTTP and websocket API"`
	Shell ShellCommand `command:"shell" description:"Drive the shields from an interactive shell"`
}

var (
	ENV *EnvConfig

	opts   Options
	parser = flags.NewParser(&opts, flags.Default)
)

func init() {
	ENV = new(EnvConfig)
	if err := env.Parse(ENV); err != nil {
		panic(err)
	}

	if ENV.JWT_SECRET == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			panic(err)
		}
		ENV.JWT_SECRET = hex.EncodeToString(buf)
	}
}

func main() {
	parser.LongDescription = "gowemos - WEMOS I2C motor shield controller"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}

func (c *ServeCommand) Execute(args []string) error {
	if err := setup(c.Sim); err != nil {
		return err
	}
	defer teardown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// leaving the shell stops the server
	if shellEnabled(c.NoShell, os.Stdin.Fd()) {
		shell := newShell()
		shell.Println("gowemos development shell")
		shell.Start()
		go func() {
			shell.Wait()
			stop()
		}()
	}

	srv := &http.Server{
		Addr:    c.Listen,
		Handler: newRouter(),
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	log.Println("Listening on", c.Listen)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// shellEnabled reports whether serve runs the development shell. Without a
// terminal on stdin the shell would see EOF at once and stop the server.
func shellEnabled(noShell bool, stdin uintptr) bool {
	if noShell {
		return false
	}
	return isatty.IsTerminal(stdin) || isatty.IsCygwinTerminal(stdin)
}

func (c *ShellCommand) Execute(args []string) error {
	if err := setup(c.Sim); err != nil {
		return err
	}
	defer teardown()

	shell := newShell()
	shell.Println("gowemos development shell")
	shell.Run()
	return nil
}

// setup opens the user database and the shields described by the config
// file. Everything opened here is released by teardown.
func setup(sim bool) error {
	db, err := openDb(ENV.DB_PATH)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	ENV.DB = db

	config, err := onboard.LoadConfig(ENV.CONFIG)
	if err != nil {
		db.Close()
		return err
	}
	if sim {
		config.Bus.Driver = i2cbus.DRIVER_SIM
	}

	device, err := onboard.NewMotorShields(config, newLogger("shields"))
	if err != nil {
		db.Close()
		return fmt.Errorf("unable to initialize shields: %w", err)
	}

	ENV.Device = device
	ENV.Conductor = comms.NewConductor(device, newLogger("conductor"))
	return nil
}

func teardown() {
	if ENV.Device != nil {
		if err := ENV.Device.Shutdown(); err != nil {
			log.Println("shutdown:", err)
		}
	}
	if ENV.DB != nil {
		ENV.DB.Close()
	}
}

func newLogger(component string) *log.Logger {
	return log.New(os.Stderr, "["+component+"] ", log.LstdFlags)
}

func newRouter() chi.Router {
	r := chi.NewRouter()

	// A good base middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Recoverer) // make sure this is last

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", Login)

		r.Group(func(r chi.Router) {
			r.Use(ValidateJWT)

			r.Get("/refresh_token", JWTRefresh)
			r.Route("/shields", ShieldRoutes)
			r.Post("/presets/{preset}", RunPreset)
		})
	})

	r.Route("/ws", func(r chi.Router) {
		if !ENV.DEBUG {
			r.Use(ValidateJWT)
		} else {
			log.Println("Running in debug mode. Authentication disabled.")
		}

		r.Get("/drive", DriveHandler)
	})

	if ENV.HTMLDIR != "" {
		FileServer(r, "/", http.Dir(ENV.HTMLDIR))
	}

	return r
}

func openDb(dbFile string) (db *storm.DB, err error) {
	if err = os.MkdirAll(filepath.Dir(dbFile), 0755); err != nil {
		return
	}

	db, err = storm.Open(dbFile)
	if err != nil {
		return
	}

	// call inits for each type
	if err := db.Init(&User{}); err != nil {
		db.Close()
		return nil, err
	}

	return
}

// FileServer conveniently sets up a http.FileServer handler to serve
// static files from a http.FileSystem.
func FileServer(r chi.Router, path string, root http.FileSystem) {
	if strings.ContainsAny(path, "{}*") {
		panic("FileServer does not permit URL parameters.")
	}

	fs := http.StripPrefix(path, http.FileServer(root))

	if path != "/" && path[len(path)-1] != '/' {
		r.Get(path, http.RedirectHandler(path+"/", http.StatusMovedPermanently).ServeHTTP)
		path += "/"
	}
	path += "*"

	r.Get(path, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.ServeHTTP(w, r)
	}))
}
