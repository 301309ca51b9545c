package filestore_test

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Poorani-S/pettycash-backend/internal"
	"github.com/Poorani-S/pettycash-backend/internal/filestore"
	"github.com/Poorani-S/pettycash-backend/pkg/logger"
)

func TestFilestore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Filestore Suite")
}

var _ = Describe("Store", func() {
	var (
		baseDir string
		store   *filestore.Store
	)

	BeforeEach(func() {
		var err error
		baseDir, err = os.MkdirTemp("", "filestore-test-*")
		Expect(err).NotTo(HaveOccurred())

		store = filestore.NewStore(baseDir, 1024, logger.LoggerWrapper())
	})

	AfterEach(func() {
		Expect(os.RemoveAll(baseDir)).To(Succeed())
	})

	Describe("Save", func() {
		It("should persist a file under the category directory", func() {
			relPath, err := store.Save("invoices", "receipt.pdf", 11, strings.NewReader("PDF content"))
			Expect(err).NotTo(HaveOccurred())
			Expect(relPath).To(HavePrefix("invoices" + string(filepath.Separator)))
			Expect(relPath).To(HaveSuffix(".pdf"))

			content, err := os.ReadFile(filepath.Join(baseDir, relPath))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(content)).To(Equal("PDF content"))
		})

		It("should generate distinct names for identical filenames", func() {
			first, err := store.Save("invoices", "receipt.pdf", 4, strings.NewReader("one"))
			Expect(err).NotTo(HaveOccurred())
			second, err := store.Save("invoices", "receipt.pdf", 4, strings.NewReader("two"))
			Expect(err).NotTo(HaveOccurred())
			Expect(first).NotTo(Equal(second))
		})

		It("should accept extensions case-insensitively", func() {
			_, err := store.Save("invoices", "SCAN.PDF", 4, strings.NewReader("data"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("should accept office documents", func() {
			_, err := store.Save("invoices", "quote.xlsx", 4, strings.NewReader("data"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("should reject an extension outside the allow-list", func() {
			_, err := store.Save("invoices", "malware.exe", 4, strings.NewReader("data"))
			Expect(err).To(Equal(internal.ErrInvalidFileType))
		})

		It("should reject a declared size over the cap", func() {
			_, err := store.Save("invoices", "big.pdf", 2048, strings.NewReader("data"))
			Expect(err).To(Equal(internal.ErrFileTooLarge))
		})

		It("should reject a stream larger than its declared size", func() {
			oversized := strings.Repeat("x", 2048)

			_, err := store.Save("invoices", "liar.pdf", 10, strings.NewReader(oversized))
			Expect(err).To(Equal(internal.ErrFileTooLarge))

			entries, readErr := os.ReadDir(filepath.Join(baseDir, "invoices"))
			Expect(readErr).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})
	})

	Describe("Open", func() {
		var relPath string

		BeforeEach(func() {
			var err error
			relPath, err = store.Save("proofs", "proof.png", 5, strings.NewReader("bytes"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("should read back a stored file", func() {
			f, err := store.Open(relPath)
			Expect(err).NotTo(HaveOccurred())
			defer f.Close()

			content, err := io.ReadAll(f)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(content)).To(Equal("bytes"))
		})

		It("should refuse a path escaping the base directory", func() {
			_, err := store.Open("../../etc/passwd")
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})

		It("should refuse an absolute path", func() {
			_, err := store.Open("/etc/passwd")
			Expect(err).To(HaveOccurred())
		})

		It("should return not found for a missing file", func() {
			_, err := store.Open("proofs/nope.png")
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(404))
		})
	})

	Describe("Remove", func() {
		It("should delete a stored file", func() {
			relPath, err := store.Save("proofs", "proof.jpg", 5, strings.NewReader("bytes"))
			Expect(err).NotTo(HaveOccurred())

			Expect(store.Remove(relPath)).To(Succeed())

			_, err = os.Stat(filepath.Join(baseDir, relPath))
			Expect(os.IsNotExist(err)).To(BeTrue())
		})

		It("should treat a missing file as already removed", func() {
			Expect(store.Remove("proofs/gone.jpg")).To(Succeed())
		})

		It("should refuse a traversal path", func() {
			err := store.Remove("../outside.txt")
			Expect(err).To(HaveOccurred())
		})
	})
})
