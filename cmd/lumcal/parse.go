package main

import(
	"fmt"
	"strconv"
	"strings"

	"github.com/abworrall/lumcal/pkg/emath"
)

func parseFloats(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("'%s': %w", s, err)
		}
		vals[i] = v
	}
	return vals, nil
}

// parseVec3 takes either one value (used for all three) or three
func parseVec3(s string) (emath.Vec3, error) {
	vals, err := parseFloats(s)
	if err != nil {
		return emath.Vec3{}, err
	}
	switch len(vals) {
	case 1: return emath.Vec3{vals[0], vals[0], vals[0]}, nil
	case 3: return emath.Vec3{vals[0], vals[1], vals[2]}, nil
	}
	return emath.Vec3{}, fmt.Errorf("'%s': want 1 or 3 values, got %d", s, len(vals))
}

// parseMat3 takes nine values, row-major; empty means identity
func parseMat3(s string) (emath.Mat3, error) {
	if strings.TrimSpace(s) == "" {
		return emath.Identity3(), nil
	}
	vals, err := parseFloats(s)
	if err != nil {
		return emath.Mat3{}, err
	}
	if len(vals) != 9 {
		return emath.Mat3{}, fmt.Errorf("'%s': want 9 values for a matrix, got %d", s, len(vals))
	}
	m := emath.Mat3{}
	copy(m[:], vals)
	return m, nil
}
