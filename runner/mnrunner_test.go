package runner_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gitlab.com/akita/nvwear/runner"
)

var _ = Describe("MNRunner", func() {
	var tmp string

	BeforeEach(func() {
		var err error
		tmp, err = os.MkdirTemp("", "mnrunner-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmp)
	})

	Describe("rebalance off (scenario 6)", func() {
		It("reports the single most write-intensive job's closed-form lifetime", func() {
			statsOut := filepath.Join(tmp, "mn-stats.txt")
			cfg, err := runner.ParseMNConfig([]string{
				"-n", "4", "-c", "1000", "-l", "64", "-p", "4096",
				"-g", "4096", "-t", "1.0", "-r", "false",
				"-j", "500:300:0.5,700:100:0.9",
				"-stats-out", statsOut,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Rebalance).To(BeFalse())

			r, err := runner.NewMNRunner(cfg, runner.NewLogger(false))
			Expect(err).NotTo(HaveOccurred())

			Expect(r.Run()).To(Succeed())

			out, err := os.ReadFile(statsOut)
			Expect(err).NotTo(HaveOccurred())
			content := string(out)

			// bwpq for job 1 (700:100:0.9) is 5040, the larger of the two jobs,
			// so EPOCHS = (4096*8*1000)/5040 = 6501.
			Expect(content).To(ContainSubstring("EPOCHS 6501"))
			Expect(content).To(ContainSubstring("TOTAL_N_PROMOTIONS 0"))
			Expect(content).To(ContainSubstring("LIFETIME_EST_VIAAVG_S 0"))
		})
	})

	Describe("rebalance on", func() {
		It("runs the promotion loop to a bounded epoch count without error", func() {
			cfg, err := runner.ParseMNConfig([]string{
				"-n", "4", "-c", "1000", "-l", "64", "-p", "4096",
				"-g", "4096", "-t", "1.0", "-r", "true",
				"-j", "500:300:0.5,700:100:0.9",
				"-i", "10",
				"-stats-out", filepath.Join(tmp, "mn-stats.txt"),
			})
			Expect(err).NotTo(HaveOccurred())

			r, err := runner.NewMNRunner(cfg, runner.NewLogger(false))
			Expect(err).NotTo(HaveOccurred())

			Expect(r.Run()).To(Succeed())
		})
	})
})

var _ = Describe("ParseMNConfig", func() {
	It("rejects a missing rebalance toggle", func() {
		_, err := runner.ParseMNConfig([]string{
			"-n", "4", "-c", "1000", "-l", "64", "-p", "4096",
			"-g", "4096", "-t", "1.0", "-j", "500:300:0.5",
		})
		Expect(err).To(HaveOccurred())
	})

	It("rejects line size greater than page size", func() {
		_, err := runner.ParseMNConfig([]string{
			"-n", "4", "-c", "1000", "-l", "8192", "-p", "4096",
			"-g", "4096", "-t", "1.0", "-r", "true", "-j", "500:300:0.5",
		})
		Expect(err).To(HaveOccurred())
	})
})
