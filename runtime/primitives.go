package runtime

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/sergev/codelang/lang"
)

// now is replaced in tests.
var now = time.Now

func installPrimitives(ev *lang.Evaluator) {
	define := ev.DefineNative

	define("clock", 0, primClock)
	define("ceil", 1, floatUnary("ceil", math.Ceil))
	define("floor", 1, floatUnary("floor", math.Floor))
	define("sqrt", 1, floatUnary("sqrt", math.Sqrt))
	define("abs", 1, floatUnary("abs", math.Abs))
	define("pow", 2, primPow)
	define("scanString", 1, primScanString)
}

func primClock(_ *lang.Evaluator, _ []lang.Value) (lang.Value, error) {
	return lang.FloatValue(float64(now().UnixMilli()) / 1000.0), nil
}

func floatUnary(name string, fn func(float64) float64) lang.Primitive {
	return func(_ *lang.Evaluator, args []lang.Value) (lang.Value, error) {
		x, err := floatArg(name, args[0])
		if err != nil {
			return lang.Value{}, err
		}
		return lang.FloatValue(fn(x)), nil
	}
}

func primPow(_ *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	base, err := floatArg("pow", args[0])
	if err != nil {
		return lang.Value{}, err
	}
	exp, err := floatArg("pow", args[1])
	if err != nil {
		return lang.Value{}, err
	}
	return lang.FloatValue(math.Pow(base, exp)), nil
}

// primScanString prints its prompt on a line of its own and returns the
// next input line.
func primScanString(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	fmt.Fprintln(ev.Output(), args[0].String())
	line, err := ev.ReadLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return lang.Value{}, lang.NewFault(lang.InvalidInput, "scanString: no input available.")
		}
		return lang.Value{}, fmt.Errorf("scanString: %w", err)
	}
	return lang.StringValue(line), nil
}

func floatArg(name string, v lang.Value) (float64, error) {
	if v.Type != lang.TypeFloat {
		return 0, lang.NewFault(lang.TypeMismatch, "%s: expected a FLOAT argument, got %s.", name, v.Type)
	}
	return v.Float(), nil
}
