// Command publish is the admin tool for the routine server: it uploads a
// department schedule, deletes one, or toggles the maintenance flags.
//
//	publish -a 127.0.0.1:50051 -s secretKey schedule cse.json
//	publish -t <token> delete CSE
//	publish maintenance on "Server upgrade until 10:00"
//	publish break off
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/campusroutine/internal/client/client"
	"github.com/dmitrijs2005/campusroutine/internal/models"
	"github.com/dmitrijs2005/campusroutine/internal/server/auth"
)

type adminClient interface {
	Maintenance(ctx context.Context) (models.MaintenanceInfo, error)
	Publish(ctx context.Context, s *models.Schedule, updateType string) (int64, error)
	Delete(ctx context.Context, department string) (int64, error)
	SetMaintenance(ctx context.Context, info models.MaintenanceInfo) (int64, error)
	SetAccessToken(token string)
	Close() error
}

type options struct {
	addr       string
	secret     string
	token      string
	updateType string
	timeout    time.Duration
}

var dialAdmin = func(addr string) (adminClient, error) {
	return client.NewGRPCClient(addr)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	var o options
	fs := flag.NewFlagSet("publish", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&o.addr, "a", "127.0.0.1:50051", "address and port of the routine server")
	fs.StringVar(&o.secret, "s", "", "server secret key used to mint an admin token")
	fs.StringVar(&o.token, "t", "", "admin access token")
	fs.StringVar(&o.updateType, "type", "", "update type recorded with a published schedule")
	fs.DurationVar(&o.timeout, "timeout", 10*time.Second, "request timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return errors.New("usage: publish [flags] schedule <file> | delete <department> | maintenance on|off [message] | break on|off")
	}

	token, err := adminToken(o)
	if err != nil {
		return err
	}

	c, err := dialAdmin(o.addr)
	if err != nil {
		return err
	}
	defer c.Close()
	c.SetAccessToken(token)

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	switch rest[0] {
	case "schedule":
		if len(rest) < 2 {
			return errors.New("schedule needs a file")
		}
		sch, err := readSchedule(rest[1])
		if err != nil {
			return err
		}
		v, err := c.Publish(ctx, sch, o.updateType)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Published %s (%d classes), version %d.\n", sch.Department, len(sch.Entries), v)

	case "delete":
		if len(rest) < 2 {
			return errors.New("delete needs a department")
		}
		v, err := c.Delete(ctx, rest[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted %s, version %d.\n", rest[1], v)

	case "maintenance", "break":
		if len(rest) < 2 || (rest[1] != "on" && rest[1] != "off") {
			return fmt.Errorf("%s needs on or off", rest[0])
		}
		info, err := c.Maintenance(ctx)
		if err != nil {
			return err
		}
		on := rest[1] == "on"
		if rest[0] == "maintenance" {
			info.MaintenanceMode = on
			info.Message = ""
			if on && len(rest) > 2 {
				info.Message = rest[2]
			}
			info.UpdateType = "maintenance"
		} else {
			info.SemesterBreak = on
			info.UpdateType = "semester_break"
		}
		v, err := c.SetMaintenance(ctx, info)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Flags updated (maintenance=%t, break=%t), version %d.\n", info.MaintenanceMode, info.SemesterBreak, v)

	default:
		return fmt.Errorf("unknown command %q", rest[0])
	}
	return nil
}

func adminToken(o options) (string, error) {
	if o.token != "" {
		return o.token, nil
	}
	if o.secret == "" {
		return "", errors.New("either -t or -s is required")
	}
	return auth.GenerateToken("publish-cli", auth.RoleAdmin, []byte(o.secret), time.Hour)
}

func readSchedule(path string) (*models.Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s models.Schedule
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &s, nil
}
