package venv

import (
	"fmt"
	"strings"

	"github.com/mrtamaki/mt/internal/errkind"
)

// ErrUnknownFeature는 기능 테이블에 없는 이름이다.
var ErrUnknownFeature = fmt.Errorf("unknown feature: %w", errkind.ErrValidation)

// Feature는 가상환경을 가지는 toolkit 기능이다. 닫힌 집합이다.
type Feature int

const (
	FeatureFiles Feature = iota + 1
	FeatureLookup
	FeatureProxy
)

type featureSpec struct {
	name     string
	packages []string
}

var featureTable = map[Feature]featureSpec{
	FeatureFiles:  {name: "files", packages: []string{"rich", "readchar"}},
	FeatureLookup: {name: "lookup", packages: []string{"requests", "rich"}},
	FeatureProxy:  {name: "proxy", packages: []string{"PySocks", "requests", "rich", "pyperclip"}},
}

// Features는 모든 기능을 선언 순서대로 반환한다.
func Features() []Feature {
	return []Feature{FeatureFiles, FeatureLookup, FeatureProxy}
}

// ParseFeature는 이름으로 Feature를 찾는다.
func ParseFeature(s string) (Feature, error) {
	for _, f := range Features() {
		if featureTable[f].name == strings.ToLower(strings.TrimSpace(s)) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("venv.ParseFeature: %q: %w", s, ErrUnknownFeature)
}

// Valid는 f가 테이블에 있는 기능인지 반환한다.
func (f Feature) Valid() bool {
	_, ok := featureTable[f]
	return ok
}

func (f Feature) String() string {
	if spec, ok := featureTable[f]; ok {
		return spec.name
	}
	return fmt.Sprintf("Feature(%d)", int(f))
}

// Packages는 기능에 설치할 패키지 목록의 복사본이다.
func (f Feature) Packages() []string {
	spec, ok := featureTable[f]
	if !ok {
		return nil
	}
	out := make([]string, len(spec.packages))
	copy(out, spec.packages)
	return out
}
