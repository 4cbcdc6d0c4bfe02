package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/campusroutine/internal/flagx"
	"github.com/dmitrijs2005/campusroutine/internal/models"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   address and port of the routine server
//	-i int      online check interval in seconds
//	-d string   path of the local SQLite database
//	-r string   remote data source: grpc or s3
//	-l string   log level
//	-u string   user id
//	-dep string department
//	-role string student or teacher
//	-batch, -sec, -lab, -ti string  batch, section, lab section, teacher initial
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-i", "-d", "-r", "-l",
		"-u", "-dep", "-role", "-batch", "-sec", "-lab", "-ti",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database file")
	fs.StringVar(&cfg.Remote, "r", cfg.Remote, "remote data source (grpc|s3)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	fs.StringVar(&cfg.User.ID, "u", cfg.User.ID, "user id")
	fs.StringVar(&cfg.User.Department, "dep", cfg.User.Department, "department")
	role := fs.String("role", string(cfg.User.Role), "student or teacher")
	fs.StringVar(&cfg.User.Batch, "batch", cfg.User.Batch, "batch")
	fs.StringVar(&cfg.User.Section, "sec", cfg.User.Section, "section")
	fs.StringVar(&cfg.User.LabSection, "lab", cfg.User.LabSection, "lab section")
	fs.StringVar(&cfg.User.Initial, "ti", cfg.User.Initial, "teacher initial")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second

	r, err := models.ParseRole(*role)
	if err != nil {
		panic(err)
	}
	cfg.User.Role = r
}
