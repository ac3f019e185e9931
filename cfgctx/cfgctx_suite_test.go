package cfgctx

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestCfgctx(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Cfgctx Suite")
}
