//go:build js && wasm

package main

import (
	"encoding/json"
	"fmt"
	"math/big"
	"math/rand"
	"strconv"
	"syscall/js"

	"github.com/smallyu/go-toy-ecdsa/internal/config"
	"github.com/smallyu/go-toy-ecdsa/internal/protocol/sign"
	"github.com/smallyu/go-toy-ecdsa/pkg/ecsig"
)

// Active schemes, keyed by the ID handed back to JS.
var (
	schemes = make(map[string]*sign.Scheme)
	nextID  int
)

func main() {
	c := make(chan struct{})

	fmt.Println("go-toy-ecdsa WASM Initialized")

	js.Global().Set("GoToyECDSA", map[string]interface{}{
		"NewScheme": js.FuncOf(NewScheme),
		"Sign":      js.FuncOf(Sign),
		"Verify":    js.FuncOf(Verify),
		"Release":   js.FuncOf(Release),
	})

	<-c
}

// NewScheme builds a scheme from a JSON object:
//
//	{"a": "1", "b": "18", "n": "19", "private": "12", "seed": 1}
//
// Omitted fields take the demo defaults. The seed is optional.
// Returns a JSON object {"id", "generator", "public"} or an error string.
func NewScheme(this js.Value, args []js.Value) interface{} {
	if len(args) != 1 {
		return "error: expected 1 argument (jsonParams)"
	}

	type ParamsInput struct {
		A       string `json:"a"`
		B       string `json:"b"`
		N       string `json:"n"`
		Private string `json:"private"`
		Seed    *int64 `json:"seed"`
	}
	var input ParamsInput
	if err := json.Unmarshal([]byte(args[0].String()), &input); err != nil {
		return fmt.Sprintf("error: invalid json: %v", err)
	}

	cfg := config.Default()
	overrides := []struct {
		src string
		dst *string
	}{
		{input.A, &cfg.Curve.A},
		{input.B, &cfg.Curve.B},
		{input.N, &cfg.Curve.N},
		{input.Private, &cfg.Private},
	}
	for _, o := range overrides {
		if o.src != "" {
			*o.dst = o.src
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Sprintf("error: %v", err)
	}

	curve, err := cfg.BuildCurve()
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	d, err := cfg.PrivateInt()
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}

	var scheme *sign.Scheme
	if input.Seed != nil {
		scheme, err = sign.NewScheme(curve, d, rand.New(rand.NewSource(*input.Seed)))
	} else {
		scheme, err = sign.NewScheme(curve, d, nil)
	}
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}

	nextID++
	id := "scheme-" + strconv.Itoa(nextID)
	schemes[id] = scheme

	return marshal(map[string]string{
		"id":        id,
		"generator": scheme.Generator().String(),
		"public":    scheme.Public().String(),
	})
}

// Sign arguments: scheme ID, message (decimal string), optional ephemeral.
// Returns a JSON object {"message", "r", "s"} or an error string.
func Sign(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 || len(args) > 3 {
		return "error: expected 2 or 3 arguments (schemeID, message, [ephemeral])"
	}
	scheme, ok := schemes[args[0].String()]
	if !ok {
		return "error: scheme not found"
	}
	m, err := config.ParseInt(args[1].String())
	if err != nil {
		return fmt.Sprintf("error: message: %v", err)
	}

	var signed *ecsig.SignedMessage
	if len(args) == 3 && args[2].String() != "" {
		k, perr := config.ParseInt(args[2].String())
		if perr != nil {
			return fmt.Sprintf("error: ephemeral: %v", perr)
		}
		signed, err = scheme.Sign(m, k)
	} else {
		signed, err = scheme.SignRandom(m, nil)
	}
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}

	return marshal(map[string]string{
		"message": signed.Message.String(),
		"r":       signed.Signature.R.String(),
		"s":       signed.Signature.S.String(),
	})
}

// Verify arguments: scheme ID, message, r, s (decimal strings).
// Returns "Valid Signature", "Invalid Signature" or an error string.
func Verify(this js.Value, args []js.Value) interface{} {
	if len(args) != 4 {
		return "error: expected 4 arguments (schemeID, message, r, s)"
	}
	scheme, ok := schemes[args[0].String()]
	if !ok {
		return "error: scheme not found"
	}

	values := make([]*big.Int, 3)
	for i, name := range []string{"message", "r", "s"} {
		v, err := config.ParseInt(args[i+1].String())
		if err != nil {
			return fmt.Sprintf("error: %s: %v", name, err)
		}
		values[i] = v
	}

	verdict, err := scheme.Verify(values[0], &ecsig.Signature{R: values[1], S: values[2]})
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return verdict.String()
}

// Release drops a scheme.
func Release(this js.Value, args []js.Value) interface{} {
	if len(args) != 1 {
		return "error: expected 1 argument (schemeID)"
	}
	delete(schemes, args[0].String())
	return nil
}

func marshal(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(b)
}
