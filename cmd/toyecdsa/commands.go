package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"math/rand"
	"os"
	"strings"

	"github.com/smallyu/go-toy-ecdsa/internal/config"
	"github.com/smallyu/go-toy-ecdsa/internal/crypto/curves"
	"github.com/smallyu/go-toy-ecdsa/internal/logging"
	"github.com/smallyu/go-toy-ecdsa/internal/protocol/keygen"
	"github.com/smallyu/go-toy-ecdsa/internal/protocol/sign"
	"github.com/smallyu/go-toy-ecdsa/pkg/ecsig"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// SignCommand signs one message.
func SignCommand() *cli.Command {
	return &cli.Command{
		Name:  "sign",
		Usage: "Sign a message with the configured key",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "message", Usage: "message as a decimal integer"},
			&cli.StringFlag{Name: "text", Usage: "message as text, hashed with SHA-256 and reduced mod n"},
			&cli.StringFlag{Name: "ephemeral", Usage: "ephemeral scalar k; drawn at random when empty"},
		},
		Action: runSignCommand,
	}
}

// VerifyCommand checks a signature.
func VerifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Verify a signature",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "message", Usage: "message as a decimal integer"},
			&cli.StringFlag{Name: "text", Usage: "message as text, hashed with SHA-256 and reduced mod n"},
			&cli.StringFlag{Name: "r", Usage: "signature component r", Required: true},
			&cli.StringFlag{Name: "s", Usage: "signature component s", Required: true},
			&cli.StringFlag{Name: "generator", Usage: "generator as x,y; derived from --seed when empty"},
			&cli.StringFlag{Name: "public", Usage: "public point as x,y; derived from --private when empty"},
		},
		Action: runVerifyCommand,
	}
}

// DemoCommand runs the fixed sign-then-verify walk-through.
func DemoCommand() *cli.Command {
	return &cli.Command{
		Name:   "demo",
		Usage:  "Sign the configured message and verify it",
		Action: runDemoCommand,
	}
}

// PointsCommand lists curve points.
func PointsCommand() *cli.Command {
	return &cli.Command{
		Name:  "points",
		Usage: "List generator candidates, or every point with --all",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "all", Usage: "list every affine point with its order"},
		},
		Action: runPointsCommand,
	}
}

type session struct {
	cfg    *config.Config
	curve  *curves.Curve
	random io.Reader
	logger *zap.Logger
	out    io.Writer
}

func newSession(cmd *cli.Command) (*session, error) {
	cfg := config.Default()
	if path := cmd.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	overrides := []struct {
		flag string
		dst  *string
	}{
		{"a", &cfg.Curve.A},
		{"b", &cfg.Curve.B},
		{"n", &cfg.Curve.N},
		{"private", &cfg.Private},
		{"log-level", &cfg.Log.Level},
		{"log-format", &cfg.Log.Format},
	}
	for _, o := range overrides {
		if cmd.IsSet(o.flag) {
			*o.dst = cmd.String(o.flag)
		}
	}
	if cmd.IsSet("seed") {
		seed := cmd.Int("seed")
		cfg.Seed = &seed
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	curve, err := cfg.BuildCurve()
	if err != nil {
		return nil, err
	}

	root := cmd.Root()
	errOut := root.ErrWriter
	if errOut == nil {
		errOut = os.Stderr
	}
	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Writer: errOut})
	if err != nil {
		return nil, err
	}

	var random io.Reader
	if cfg.Seed != nil {
		random = rand.New(rand.NewSource(*cfg.Seed))
	}

	out := root.Writer
	if out == nil {
		out = os.Stdout
	}
	return &session{cfg: cfg, curve: curve, random: random, logger: logger, out: out}, nil
}

func (s *session) scheme() (*sign.Scheme, error) {
	d, err := s.cfg.PrivateInt()
	if err != nil {
		return nil, err
	}
	return sign.NewScheme(s.curve, d, s.random, sign.WithLogger(s.logger))
}

// message prefers --text, then --message, then the configured message.
func (s *session) message(cmd *cli.Command) (*big.Int, error) {
	if cmd.IsSet("text") {
		return sign.HashMessage([]byte(cmd.String("text")), s.curve.N()), nil
	}
	if cmd.IsSet("message") {
		return config.ParseInt(cmd.String("message"))
	}
	return s.cfg.MessageInt()
}

func runSignCommand(ctx context.Context, cmd *cli.Command) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.logger.Sync() //nolint:errcheck

	scheme, err := s.scheme()
	if err != nil {
		return err
	}
	m, err := s.message(cmd)
	if err != nil {
		return err
	}

	var k *big.Int
	if cmd.IsSet("ephemeral") {
		if k, err = config.ParseInt(cmd.String("ephemeral")); err != nil {
			return err
		}
	}

	var signed *ecsig.SignedMessage
	if k != nil {
		signed, err = scheme.Sign(m, k)
	} else {
		signed, err = scheme.SignRandom(m, s.random)
	}
	if err != nil {
		return fmt.Errorf("sign failed: %w", err)
	}

	fmt.Fprintf(s.out, "curve: %s\n", s.curve)
	fmt.Fprintf(s.out, "generator: %s\n", scheme.Generator())
	fmt.Fprintf(s.out, "public: %s\n", scheme.Public())
	fmt.Fprintf(s.out, "message: %s\n", signed.Message)
	fmt.Fprintf(s.out, "signature: %s\n", signed.Signature)
	return nil
}

func runVerifyCommand(ctx context.Context, cmd *cli.Command) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.logger.Sync() //nolint:errcheck

	m, err := s.message(cmd)
	if err != nil {
		return err
	}
	r, err := config.ParseInt(cmd.String("r"))
	if err != nil {
		return fmt.Errorf("r: %w", err)
	}
	sv, err := config.ParseInt(cmd.String("s"))
	if err != nil {
		return fmt.Errorf("s: %w", err)
	}

	verifier, err := s.verifier(cmd)
	if err != nil {
		return err
	}
	verdict, err := verifier.Verify(m, &ecsig.Signature{R: r, S: sv})
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}
	fmt.Fprintln(s.out, verdict)
	return nil
}

// verifier uses the points given on the command line, deriving whichever
// is missing from the configured private scalar and seed.
func (s *session) verifier(cmd *cli.Command) (*sign.Verifier, error) {
	var g, q curves.Point
	var haveG, haveQ bool
	var err error
	if cmd.IsSet("generator") {
		if g, err = parsePoint(cmd.String("generator")); err != nil {
			return nil, fmt.Errorf("generator: %w", err)
		}
		haveG = true
	}
	if cmd.IsSet("public") {
		if q, err = parsePoint(cmd.String("public")); err != nil {
			return nil, fmt.Errorf("public: %w", err)
		}
		haveQ = true
	}

	if !haveG || !haveQ {
		d, err := s.cfg.PrivateInt()
		if err != nil {
			return nil, err
		}
		var keys *keygen.KeyPair
		if haveG {
			keys, err = keygen.FromGenerator(s.curve, g, d)
		} else {
			keys, err = keygen.Generate(s.curve, d, s.random)
		}
		if err != nil {
			return nil, err
		}
		g = keys.Generator()
		if !haveQ {
			q = keys.Public()
		}
	}
	return sign.NewVerifier(s.curve, g, q, s.logger)
}

func runDemoCommand(ctx context.Context, cmd *cli.Command) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.logger.Sync() //nolint:errcheck

	scheme, err := s.scheme()
	if err != nil {
		return err
	}
	m, err := s.cfg.MessageInt()
	if err != nil {
		return err
	}
	k, err := s.cfg.EphemeralInt()
	if err != nil {
		return err
	}

	var signed *ecsig.SignedMessage
	if k != nil {
		signed, err = scheme.Sign(m, k)
	} else {
		signed, err = scheme.SignRandom(m, s.random)
	}
	if err != nil {
		return fmt.Errorf("sign failed: %w", err)
	}
	verdict, err := scheme.Verify(signed.Message, signed.Signature)
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}

	fmt.Fprintf(s.out, "%s %s\n", signed.Message, signed.Signature)
	fmt.Fprintln(s.out, verdict)
	return nil
}

func runPointsCommand(ctx context.Context, cmd *cli.Command) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.logger.Sync() //nolint:errcheck

	fmt.Fprintf(s.out, "curve: %s\n", s.curve)
	if !cmd.Bool("all") {
		gens, err := s.curve.Generators()
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "generator candidates: %d\n", len(gens))
		for _, g := range gens {
			fmt.Fprintln(s.out, g)
		}
		return nil
	}

	pts, err := s.curve.Points()
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "points: %d (plus Infinity)\n", len(pts))
	for _, p := range pts {
		ord, err := s.curve.Order(p)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%s order %s\n", p, ord)
	}
	return nil
}

func parsePoint(v string) (curves.Point, error) {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "(")
	v = strings.TrimSuffix(v, ")")
	parts := strings.Split(v, ",")
	if len(parts) != 2 {
		return curves.Point{}, errors.New("want x,y")
	}
	x, err := config.ParseInt(parts[0])
	if err != nil {
		return curves.Point{}, err
	}
	y, err := config.ParseInt(parts[1])
	if err != nil {
		return curves.Point{}, err
	}
	return curves.NewPoint(x, y), nil
}
