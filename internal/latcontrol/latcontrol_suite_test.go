package latcontrol_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestLatcontrol(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Latcontrol Suite")
}
