package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kpauljoseph/pagecutter/internal/config"
)

var _ = Describe("Config", func() {
	It("should provide usable defaults", func() {
		cfg := config.Default()

		Expect(cfg.OutputDir).To(Equal("."))
		Expect(cfg.OutputPrefix).To(Equal("page"))
		Expect(cfg.Ratio).To(Equal("16:9"))
		Expect(cfg.Tolerance).To(Equal(5))
		Expect(cfg.Padding).To(Equal(20))
		Expect(cfg.Direction).To(Equal("horizontal"))
		Expect(cfg.PDF.DPI).To(Equal(300))
		Expect(cfg.Web.Addr).To(Equal(":8899"))
	})

	It("should load a YAML file and fill missing fields", func() {
		path := filepath.Join(GinkgoT().TempDir(), "config.yaml")
		Expect(os.WriteFile(path, []byte(`
output_dir: /tmp/pages
ratio: "2:3"
direction: vertical-rtl
pdf:
  size: 21x29.7
`), 0644)).To(Succeed())

		cfg, err := config.Load(path)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.OutputDir).To(Equal("/tmp/pages"))
		Expect(cfg.Ratio).To(Equal("2:3"))
		Expect(cfg.Direction).To(Equal("vertical-rtl"))
		Expect(cfg.PDF.Size).To(Equal("21x29.7"))

		Expect(cfg.OutputPrefix).To(Equal("page"))
		Expect(cfg.Tolerance).To(Equal(5))
		Expect(cfg.PDF.DPI).To(Equal(300))
	})

	It("should fail on a missing file", func() {
		_, err := config.Load("/nonexistent/config.yaml")
		Expect(err).To(HaveOccurred())
	})

	It("should fail on malformed YAML", func() {
		path := filepath.Join(GinkgoT().TempDir(), "bad.yaml")
		Expect(os.WriteFile(path, []byte("ratio: [unclosed"), 0644)).To(Succeed())

		_, err := config.Load(path)
		Expect(err).To(HaveOccurred())
	})
})
