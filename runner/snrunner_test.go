package runner_test

import (
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gitlab.com/akita/nvwear/runner"
	"gitlab.com/akita/nvwear/trace"
)

func writeMemtrace(dir string, records []trace.Record) string {
	path := filepath.Join(dir, "memtrace.bin")
	buf := make([]byte, len(records)*trace.RecordSize)
	for i, rec := range records {
		trace.EncodeRecord(rec, buf[i*trace.RecordSize:(i+1)*trace.RecordSize])
	}
	Expect(os.WriteFile(path, buf, 0o644)).To(Succeed())
	return path
}

func writeBittrackSummary(dir string, lines map[string]string) string {
	path := filepath.Join(dir, "bittrack.txt")
	content := ""
	for k, v := range lines {
		content += k + " " + v + "\n"
	}
	Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
	return path
}

var _ = Describe("SNRunner", func() {
	var tmp string

	BeforeEach(func() {
		var err error
		tmp, err = os.MkdirTemp("", "snrunner-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmp)
	})

	It("wears out a single-page, single-bucket memory with TOTAL_N_PROMOTIONS=0 (scenario 1)", func() {
		writeBittrackSummary(tmp, map[string]string{
			"BLOCK_SIZE":          "64",
			"PAGE_SIZE":           "64",
			"N_PAGES_WRITTEN":     "1",
			"P_BITFLIP_PER_WRITE": "0.001953125",
		})
		records := make([]trace.Record, 5)
		for i := range records {
			records[i] = trace.Record{IsWrite: true, LineAddr: 0, Cycle: uint64(i + 1)}
		}
		writeMemtrace(tmp, records)

		statsOut := filepath.Join(tmp, "stats.txt")
		cfg, err := runner.ParseSNConfig([]string{
			"-n", "1", "-c", "1", "-b", tmp, "-m", tmp,
			"-w", "average", "-t", "1.0", "-g", "64",
			"-stats-out", statsOut,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.NBuckets).To(Equal(uint64(1)))

		r, err := runner.NewSNRunner(cfg, runner.NewLogger(false))
		Expect(err).NotTo(HaveOccurred())

		Expect(r.Run()).To(Succeed())

		out, err := os.ReadFile(statsOut)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(out)).To(ContainSubstring("TOTAL_N_PROMOTIONS 0"))
		Expect(string(out)).To(ContainSubstring("MEMORY_PAGES_INSIM 1"))
	})

	It("seeds every page the trace visits, including a final record whose page is seen nowhere else", func() {
		writeBittrackSummary(tmp, map[string]string{
			"BLOCK_SIZE":          "64",
			"PAGE_SIZE":           "64",
			"N_PAGES_WRITTEN":     "2",
			"P_BITFLIP_PER_WRITE": "0.0001",
		})
		records := []trace.Record{
			{IsWrite: true, LineAddr: 0, Cycle: 1},
			{IsWrite: true, LineAddr: 0, Cycle: 2},
			{IsWrite: true, LineAddr: 64, Cycle: 3},
		}
		writeMemtrace(tmp, records)

		statsOut := filepath.Join(tmp, "stats.txt")
		cfg, err := runner.ParseSNConfig([]string{
			"-n", "1", "-c", "1", "-b", tmp, "-m", tmp,
			"-w", "average", "-t", "1.0", "-g", "128",
			"-i", "1",
			"-stats-out", statsOut,
		})
		Expect(err).NotTo(HaveOccurred())

		r, err := runner.NewSNRunner(cfg, runner.NewLogger(false))
		Expect(err).NotTo(HaveOccurred())

		Expect(r.Run()).To(Succeed())

		out, err := os.ReadFile(statsOut)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(out)).To(ContainSubstring("MEMORY_PAGES_INSIM 2"))
	})

	It("rejects a trace with no write records", func() {
		writeBittrackSummary(tmp, map[string]string{
			"BLOCK_SIZE":          "64",
			"PAGE_SIZE":           "64",
			"N_PAGES_WRITTEN":     "1",
			"P_BITFLIP_PER_WRITE": "0.01",
		})
		writeMemtrace(tmp, []trace.Record{{IsWrite: false, LineAddr: 0, Cycle: 1}})

		cfg, err := runner.ParseSNConfig([]string{
			"-n", "1", "-c", "1", "-b", tmp, "-m", tmp,
			"-w", "average", "-t", "1.0", "-g", "64",
		})
		Expect(err).NotTo(HaveOccurred())

		_, err = runner.NewSNRunner(cfg, runner.NewLogger(false))
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("no writes"))
	})
})

var _ = Describe("ParseSNConfig", func() {
	It("rejects a non-power-of-two requested memory size", func() {
		_, err := runner.ParseSNConfig([]string{
			"-n", "4", "-c", "100", "-b", "x", "-m", "y",
			"-w", "average", "-t", "1.0", "-g", "100",
		})
		Expect(err).To(HaveOccurred())
		Expect(strings.ToLower(err.Error())).To(ContainSubstring("power of two"))
	})

	It("rejects a missing write factor mode", func() {
		_, err := runner.ParseSNConfig([]string{
			"-n", "4", "-c", "100", "-b", "x", "-m", "y",
			"-t", "1.0", "-g", "64",
		})
		Expect(err).To(HaveOccurred())
	})
})
