package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"log"
	"net/http"
	"os"

	auth "github.com/chedy028/amapcity/internal/auth"
	ampacity "github.com/chedy028/amapcity/internal/calc/ampacity"
	batch "github.com/chedy028/amapcity/internal/calc/batch"
	compare "github.com/chedy028/amapcity/internal/calc/compare"
	importer "github.com/chedy028/amapcity/internal/calc/importer"
	report "github.com/chedy028/amapcity/internal/calc/report"
	sizing "github.com/chedy028/amapcity/internal/calc/sizing"
	profile "github.com/chedy028/amapcity/internal/profile"
	repo "github.com/chedy028/amapcity/internal/repo"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

var wg sync.WaitGroup

func CORS(mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

func HandleList(mux *mux.Router, db *sql.DB) {
	userRepo := repo.NewPostgresUserDB(db)
	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file")
	}
	// Load TOKEN_KEY from environment
	tokenKey := os.Getenv("TOKEN_KEY")
	if tokenKey == "" {
		log.Fatal("TOKEN_KEY environment variable is not set")
	}

	authEnv := &auth.Authenv{JWTkey: []byte(tokenKey), Repo: userRepo}
	profileH := &profile.ProfileHandler{Repo: userRepo}

	limiter := auth.NewIPRateLimiter(1, 3)

	api := mux.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	api.HandleFunc("/login", authEnv.AuthHandler).Methods("POST")
	api.HandleFunc("/register", authEnv.RegisterHandler).Methods("POST")

	secureApi := api.PathPrefix("/user").Subrouter()
	secureApi.Use(authEnv.AuthMiddleware)

	secureApi.HandleFunc("/profile", profileH.GetProfile).Methods("GET")
	secureApi.HandleFunc("/profile", profileH.UpdateProfile).Methods("PATCH", "PUT")
	secureApi.HandleFunc("/profile/{id:[0-9]+}", profileH.GetProfile).Methods("GET")
	secureApi.HandleFunc("/upload-avatar", profileH.UploadAvatar).Methods("POST")
	secureApi.HandleFunc("/runs", profileH.ListRuns).Methods("GET")

	ampacityH := &ampacity.Handler{Repo: userRepo}
	batchH := &batch.Handler{}
	sizingH := &sizing.Handler{}
	compareH := &compare.Handler{}
	importerH := &importer.Handler{}
	reportH := &report.Handler{}

	secureApi.HandleFunc("/tools/ampacity/calc", ampacityH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/ampacity/batch", batchH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/ampacity/sizing", sizingH.Suggest).Methods("POST")
	secureApi.HandleFunc("/tools/ampacity/temp-check", sizingH.CheckTemperature).Methods("POST")
	secureApi.HandleFunc("/tools/ampacity/compare", compareH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/ampacity/import", importerH.Studies).Methods("POST")
	secureApi.HandleFunc("/tools/ampacity/export", importerH.Export).Methods("POST")
	secureApi.HandleFunc("/tools/report/pdf", reportH.Generate).Methods("POST")

	secureApi.HandleFunc("/docs/list", func(w http.ResponseWriter, r *http.Request) {
		type Doc struct {
			Name string `json:"name"`
			Path string `json:"path"`
		}
		var docs []Doc
		fs.WalkDir(os.DirFS("./docs"), ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			docs = append(docs, Doc{Name: d.Name(), Path: path})
			return nil
		})
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(docs)
	}).Methods("GET")

	mux.PathPrefix("/uploads/").
		Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir("./static/uploads/"))))

	authFileServer := http.FileServer(http.Dir("./static/auth"))
	mux.PathPrefix("/auth/").
		Handler(authEnv.RedirectIfLoggedIn(http.StripPrefix("/auth", authFileServer)))
	profileFileServer := http.FileServer(http.Dir("./static/profile"))
	mux.Handle("/profile/{id:[0-9]+}", authEnv.PageMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./static/profile/index.html")
	})))
	mux.PathPrefix("/profile/").
		Handler(authEnv.PageMiddleware(http.StripPrefix("/profile", profileFileServer)))
	mux.PathPrefix("/docs/").
		Handler(authEnv.PageMiddleware(http.StripPrefix("/docs", http.FileServer(http.Dir("./docs")))))
	mainFileServer := http.FileServer(http.Dir("./static/main"))
	mux.PathPrefix("/").
		Handler(mainFileServer)

}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// .env must be loaded before repo.Open reads DATABASE_URL.
	if err := godotenv.Load(); err != nil {
		log.Fatal("Error loading .env file")
	}
	db := repo.Open()
	defer db.Close()
	if err := repo.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("Schema error: %v", err)
	}
	mux := mux.NewRouter()
	log.Println("Starting server on :443")
	HandleList(mux, db)
	handler := CORS(mux)

	server := &http.Server{
		Addr:    ":443",
		Handler: handler,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.ListenAndServeTLS("server.crt", "server.key"); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	fmt.Println("Shutdown signal received!")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped cleanly")

	wg.Wait()
}
