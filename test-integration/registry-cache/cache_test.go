package integration

import (
	"os"
	"path/filepath"
	"regexp"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nf-core/modcache/internal/registry"
	"github.com/nf-core/modcache/internal/session"
	"github.com/nf-core/modcache/test-integration/registry-cache/helpers"
)

var commitPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

var _ = Describe("Registry Cache", Label("cache"), func() {
	var (
		tempDir   string
		cacheDir  string
		gitHelper *helpers.GitTestHelper
		testRepo  *helpers.GitTestRepository
		sess      *session.Session
		oldCommit string
	)

	open := func(opts registry.Options) (*registry.Handle, error) {
		if opts.Session == nil {
			opts.Session = sess
		}
		opts.CacheDir = cacheDir
		opts.HideProgress = true
		return registry.New(ctx, testRepo.CloneURL, opts)
	}

	BeforeEach(func() {
		tempDir = createTempDir("registry-cache-test-")
		cacheDir = filepath.Join(tempDir, "cache")
		sess = session.New()

		gitHelper = helpers.NewGitTestHelper(ctx)
		testRepo = gitHelper.CreateRegistry("acme", "modules", "acme")
		oldCommit = gitHelper.CommitComponent(testRepo, "modules", "acme", "fastqc", "process FASTQC {}\n", "Add fastqc")
		gitHelper.CommitComponent(testRepo, "modules", "acme", "multiqc", "process MULTIQC {}\n", "Add multiqc")
		gitHelper.CommitComponent(testRepo, "modules", "acme", "fastqc", "process FASTQC { cpus 4 }\n", "Bump fastqc cpus")
		gitHelper.CommitComponent(testRepo, "subworkflows", "acme", "qc", "workflow QC {}\n", "Add qc subworkflow")
	})

	AfterEach(func() {
		if gitHelper != nil {
			_ = gitHelper.CleanupRepositories()
		}
		cleanupTempDir(tempDir)
	})

	Context("Listing components of a fresh cache", func() {
		It("should clone and report the latest version of a known module", func() {
			handle, err := open(registry.Options{})
			Expect(err).NotTo(HaveOccurred())
			Expect(handle.FullName).To(Equal("acme/modules"))
			Expect(handle.Branch).To(Equal("main"))
			Expect(handle.LocalDir).To(Equal(filepath.Join(cacheDir, "acme", "modules")))

			modules, err := handle.ListComponents(registry.Module, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(modules).To(ConsistOf("fastqc", "multiqc"))

			subworkflows, err := handle.ListComponents(registry.Subworkflow, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(subworkflows).To(ConsistOf("qc"))

			latest, err := handle.LatestVersion(ctx, "fastqc", registry.Module)
			Expect(err).NotTo(HaveOccurred())
			Expect(latest.SHA).To(MatchRegexp(commitPattern.String()))
			Expect(latest.Message).To(Equal("Bump fastqc cpus"))

			history, err := handle.CommitHistory(ctx, "fastqc", registry.Module, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(HaveLen(2))
			Expect(history[1].SHA).To(Equal(oldCommit))
		})
	})

	Context("Installing a component at an old commit", func() {
		It("should write the old files and return to the branch tip", func() {
			handle, err := open(registry.Options{})
			Expect(err).NotTo(HaveOccurred())

			projectDir := filepath.Join(tempDir, "project", "modules", "acme")
			ok, err := handle.Install(ctx, "fastqc", registry.Module, oldCommit, projectDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			content, err := os.ReadFile(filepath.Join(projectDir, "fastqc", "main.nf"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(content)).To(Equal("process FASTQC {}\n"))
			Expect(handle.State().Kind).To(Equal(registry.AtBranchTip))

			identical, err := handle.FilesIdentical(ctx, "fastqc", filepath.Join(projectDir, "fastqc"), "")
			Expect(err).NotTo(HaveOccurred())
			Expect(identical).To(HaveKeyWithValue(registry.MarkerFile, false))
			Expect(identical).To(HaveKeyWithValue(registry.MetaFile, true))

			identical, err = handle.FilesIdentical(ctx, "fastqc", filepath.Join(projectDir, "fastqc"), oldCommit)
			Expect(err).NotTo(HaveOccurred())
			Expect(identical).To(HaveKeyWithValue(registry.MarkerFile, true))
		})

		It("should refuse a module that did not exist at the commit", func() {
			handle, err := open(registry.Options{})
			Expect(err).NotTo(HaveOccurred())

			ok, err := handle.Install(ctx, "multiqc", registry.Module, oldCommit, filepath.Join(tempDir, "project"))
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
			Expect(filepath.Join(tempDir, "project", "multiqc")).NotTo(BeADirectory())
			Expect(handle.State().Kind).To(Equal(registry.AtBranchTip))
		})
	})

	Context("Requesting a branch that does not exist", func() {
		It("should fail with BranchNotFound and keep the cache", func() {
			_, err := open(registry.Options{})
			Expect(err).NotTo(HaveOccurred())

			_, err = open(registry.Options{Branch: "does-not-exist"})
			Expect(err).To(HaveOccurred())
			Expect(registry.IsKind(err, registry.BranchNotFound)).To(BeTrue())
			Expect(filepath.Join(cacheDir, "acme", "modules", ".git")).To(BeADirectory())
		})
	})

	Context("Sharing a session", func() {
		It("should fetch an existing cache only once per session", func() {
			_, err := open(registry.Options{})
			Expect(err).NotTo(HaveOccurred())

			gitHelper.CommitComponent(testRepo, "modules", "acme", "bwa", "process BWA {}\n", "Add bwa")

			handle, err := open(registry.Options{})
			Expect(err).NotTo(HaveOccurred())
			Expect(handle.ComponentExists("bwa", registry.Module, true)).To(BeFalse())

			handle, err = open(registry.Options{Session: session.New()})
			Expect(err).NotTo(HaveOccurred())
			Expect(handle.ComponentExists("bwa", registry.Module, true)).To(BeTrue())
		})

		It("should keep sync suppressed once no-pull was requested", func() {
			_, err := open(registry.Options{})
			Expect(err).NotTo(HaveOccurred())

			gitHelper.CommitComponent(testRepo, "modules", "acme", "bwa", "process BWA {}\n", "Add bwa")

			fresh := session.New()
			_, err = open(registry.Options{Session: fresh, NoPull: true})
			Expect(err).NotTo(HaveOccurred())

			handle, err := open(registry.Options{Session: fresh})
			Expect(err).NotTo(HaveOccurred())
			Expect(handle.ComponentExists("bwa", registry.Module, true)).To(BeFalse())
			Expect(fresh.SyncSuppressed()).To(BeTrue())
		})
	})

	Context("Recovering a corrupted cache", func() {
		BeforeEach(func() {
			localDir := filepath.Join(cacheDir, "acme", "modules")
			Expect(os.MkdirAll(localDir, 0750)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(localDir, "junk"), []byte("not a repository"), 0600)).To(Succeed())
		})

		It("should re-clone under always-delete", func() {
			handle, err := open(registry.Options{Recovery: registry.RecoveryAlwaysDelete})
			Expect(err).NotTo(HaveOccurred())
			Expect(filepath.Join(handle.LocalDir, "junk")).NotTo(BeAnExistingFile())
			Expect(handle.ComponentExists("fastqc", registry.Module, true)).To(BeTrue())
		})

		It("should leave the cache alone under fail-fast", func() {
			_, err := open(registry.Options{Recovery: registry.RecoveryFailFast})
			Expect(err).To(HaveOccurred())
			Expect(registry.IsKind(err, registry.CorruptedCache)).To(BeTrue())
			Expect(filepath.Join(cacheDir, "acme", "modules", "junk")).To(BeAnExistingFile())
		})

		It("should ask before deleting under retry-once", func() {
			var asked string
			_, err := open(registry.Options{
				Recovery: registry.RecoveryRetryOnce,
				Confirm: func(localDir string, _ error) bool {
					asked = localDir
					return false
				},
			})
			Expect(err).To(HaveOccurred())
			Expect(registry.IsKind(err, registry.CorruptedCache)).To(BeTrue())
			Expect(asked).To(Equal(filepath.Join(cacheDir, "acme", "modules")))
		})
	})

	Context("Registries that do not follow the layout", func() {
		It("should reject a registry without org_path", func() {
			testRepo = gitHelper.CreateRegistry("acme", "broken", "")

			_, err := open(registry.Options{})
			Expect(err).To(HaveOccurred())
			Expect(registry.IsKind(err, registry.MalformedRegistry)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("org_path"))
		})

		It("should reject a registry without a modules directory", func() {
			testRepo = gitHelper.CreateRegistry("acme", "empty", "acme")

			_, err := open(registry.Options{})
			Expect(err).To(HaveOccurred())
			Expect(registry.IsKind(err, registry.MalformedRegistry)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("does not contain the 'modules/' directory"))
		})
	})
})

var _ = Describe("Canonical Registry", Label("network"), func() {
	var cacheDir string

	BeforeEach(func() {
		if os.Getenv("MODCACHE_NETWORK_TESTS") == "" {
			Skip("set MODCACHE_NETWORK_TESTS to run tests against " + registry.CanonicalRemoteURL)
		}
		cacheDir = createTempDir("registry-cache-network-")
	})

	AfterEach(func() {
		cleanupTempDir(cacheDir)
	})

	It("should list fastqc and resolve its latest version", func() {
		handle, err := registry.New(ctx, "", registry.Options{
			Session:      session.New(),
			CacheDir:     cacheDir,
			HideProgress: true,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(handle.FullName).To(Equal("nf-core/modules"))
		Expect(handle.Branch).To(Equal(registry.CanonicalDefaultBranch))

		modules, err := handle.ListComponents(registry.Module, true)
		Expect(err).NotTo(HaveOccurred())
		Expect(modules).To(ContainElement("fastqc"))

		latest, err := handle.LatestVersion(ctx, "fastqc", registry.Module)
		Expect(err).NotTo(HaveOccurred())
		Expect(latest.SHA).To(MatchRegexp(commitPattern.String()))
		Expect(latest.Message).NotTo(BeEmpty())
	})
})
