package complexity_test

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestComplexity(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Complexity Suite")
}
