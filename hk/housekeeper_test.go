package hk_test

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/velichkov/createrepo-c/hk"
)

var _ = Describe("Housekeeper", func() {
	It("should invoke a registered callback after its initial delay", func() {
		fired := make(chan struct{}, 1)
		hk.DefaultHK.RegisterCB("test-cb", func() time.Duration {
			select {
			case fired <- struct{}{}:
			default:
			}
			return 0 // unregister after firing once
		}, time.Millisecond)

		Eventually(fired, time.Second).Should(Receive())
	})

	It("should reschedule a callback that returns a positive duration", func() {
		count := make(chan struct{}, 8)
		hk.DefaultHK.RegisterCB("repeating-cb", func() time.Duration {
			select {
			case count <- struct{}{}:
			default:
			}
			return 2 * time.Millisecond
		}, time.Millisecond)

		Eventually(func() int { return len(count) }, time.Second).Should(BeNumerically(">=", 2))
	})
})
