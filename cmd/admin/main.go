// Command admin runs maintenance tasks against the personnel database:
// spreadsheet import, bulk retirement recomputation, gender correction,
// account creation and one-off retirement calculations.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/NarcisseDedome/gestionpersonnel/config"
	"github.com/NarcisseDedome/gestionpersonnel/internal/dto"
	"github.com/NarcisseDedome/gestionpersonnel/internal/model"
	"github.com/NarcisseDedome/gestionpersonnel/internal/repository"
	"github.com/NarcisseDedome/gestionpersonnel/internal/retirement"
	"github.com/NarcisseDedome/gestionpersonnel/internal/service"
	"github.com/NarcisseDedome/gestionpersonnel/pkg/database"
	"github.com/NarcisseDedome/gestionpersonnel/pkg/jwt"
	applogger "github.com/NarcisseDedome/gestionpersonnel/pkg/logger"
)

const usage = `usage: admin <command> [flags]

commands:
  import -file PATH                  import an .xlsx personnel file
  recompute                          recompute every retirement date
  infer-genders                      switch obvious female first names to F
  create-admin -email E [-role R]    create a back-office account
  retirement -birth D -grade G -establishment E
                                     compute one retirement date (no database)
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run dispatches a sub-command.
func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "retirement":
		return runRetirement(rest, out)
	case "import":
		return runImport(ctx, rest, out)
	case "recompute":
		return withServices(ctx, func(svc *service.Service) error {
			res, err := svc.Teacher.RecomputeRetirement(ctx, service.SystemActor)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d fiches, %d dates calculées, %d indéterminées, %d modifiées\n",
				res.Total, res.Determined, res.Undetermined, res.Changed)
			for reason, n := range res.ByReason {
				fmt.Fprintf(out, "  %s: %d\n", reason, n)
			}
			return nil
		})
	case "infer-genders":
		return withServices(ctx, func(svc *service.Service) error {
			res, err := svc.Teacher.InferGenders(ctx, service.SystemActor)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d fiches corrigées\n", res.Corrected)
			for _, m := range res.Matricules {
				fmt.Fprintf(out, "  %s\n", m)
			}
			return nil
		})
	case "create-admin":
		return runCreateAdmin(ctx, rest, out)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

// ── retirement ──

// isYear reports whether a numeric -birth is a bare year rather than a serial.
func isYear(f float64) bool {
	return f == math.Trunc(f) && f >= 1900 && f <= 2100
}

func runRetirement(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("retirement", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	birth := fs.String("birth", "", "birth date: DD/MM/YYYY, YYYY-MM-DD or a spreadsheet serial")
	grade := fs.String("grade", "", "grade code, e.g. A1-1")
	establishment := fs.String("establishment", "", "establishment name")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	var raw any = *birth
	if f, err := strconv.ParseFloat(*birth, 64); err == nil && !isYear(f) {
		raw = f
	}

	res := retirement.Calculate(raw, *grade, *establishment)
	if !res.Determined() {
		fmt.Fprintf(out, "indéterminée (%s): %s\n", res.Reason, res.Detail)
		return nil
	}

	fmt.Fprintf(out, "date de naissance : %s\n", res.BirthDate.Format(retirement.DateLayout))
	fmt.Fprintf(out, "catégorie         : %s (%d ans)\n", retirement.Letter(*grade), res.Category.RetirementAge())
	fmt.Fprintf(out, "anniversaire      : %s\n", res.Anniversary.Format(retirement.DateLayout))
	fmt.Fprintf(out, "date de retraite  : %s\n", res.DateString())
	if res.College {
		fmt.Fprintln(out, "règle             : collège (1er octobre)")
	} else {
		fmt.Fprintln(out, "règle             : trimestre suivant")
	}
	if res.Clamped {
		fmt.Fprintln(out, "attention         : année de naissance ramenée dans [1900, 2100]")
	}
	return nil
}

// ── import ──

func runImport(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	path := fs.String("file", "", "path to the .xlsx file")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *path == "" {
		return fmt.Errorf("%w: -file is required", errUsage)
	}

	return withServices(ctx, func(svc *service.Service) error {
		res, err := svc.Import.ImportFile(ctx, *path, service.SystemActor)
		if err != nil {
			return err
		}
		printImport(out, res)
		return nil
	})
}

func printImport(out io.Writer, res *dto.ImportResponse) {
	fmt.Fprintf(out, "%d lignes: %d créées, %d mises à jour, %d rejetées\n",
		res.Total, res.Created, res.Updated, res.Failed)
	for _, e := range res.Errors {
		fmt.Fprintf(out, "  ligne %d (%s): %s\n", e.Row, e.Matricule, e.Reason)
	}
}

// ── create-admin ──

func runCreateAdmin(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	email := fs.String("email", "", "account email")
	role := fs.String("role", model.RoleAdmin, "admin or superadmin")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *email == "" {
		return fmt.Errorf("%w: -email is required", errUsage)
	}
	if *role != model.RoleAdmin && *role != model.RoleSuperAdmin {
		return fmt.Errorf("%w: unknown role %q", errUsage, *role)
	}

	password, err := readPassword(out)
	if err != nil {
		return err
	}

	return withServices(ctx, func(svc *service.Service) error {
		admin, err := svc.Auth.CreateAdmin(ctx, &dto.CreateAdminRequest{
			Email:    *email,
			Password: password,
			Role:     *role,
		}, service.SystemActor)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "compte créé: %s (%s)\n", admin.Email, admin.Role)
		return nil
	})
}

// readPassword prompts twice on the terminal, or reads one line from a pipe.
func readPassword(out io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		raw, err := io.ReadAll(io.LimitReader(os.Stdin, 256))
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(string(raw), "\r\n"), nil
	}

	fmt.Fprint(out, "mot de passe: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	fmt.Fprint(out, "confirmation: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

// ── bootstrap ──

// withServices connects to the database, applies migrations and hands a
// service aggregate to fn. Redis is not used: the server drops its cached
// figures on their own TTL.
func withServices(ctx context.Context, fn func(svc *service.Service) error) error {
	cfg, err := config.Load(os.Getenv("PERSONNEL_CONFIG"))
	if err != nil {
		return err
	}

	logger, err := applogger.NewLogger(&cfg.Log, "admin-cli")
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := database.RunMigrations(sqlDB, logger); err != nil {
		return err
	}

	svc := service.NewService(cfg, repository.NewRepository(db), jwt.NewManager(&cfg.Auth), service.Deps{}, logger)

	if err := fn(svc); err != nil {
		logger.Error("command failed", zap.Error(err))
		return err
	}
	return ctx.Err()
}
