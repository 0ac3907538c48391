package integration

import (
	"io"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stacklok/usersync/internal/status"
	pkgsync "github.com/stacklok/usersync/internal/sync"
	"github.com/stacklok/usersync/test-integration/usersync/helpers"
)

var _ = Describe("Sync Service Integration", Label("sync"), func() {
	var (
		tempDir  string
		upstream *helpers.UpstreamServer
	)

	BeforeEach(func() {
		tempDir = createTempDir("usersync-test-")
		helpers.ResetDatabase(ctx, pool)
	})

	AfterEach(func() {
		if upstream != nil {
			upstream.Close()
		}
		cleanupTempDir(tempDir)
	})

	Context("Running the server", func() {
		It("should sync every directory user on the first pass", func() {
			upstream = helpers.NewUpstreamServer(101, 200)
			configFile := helpers.WriteConfigYAML(tempDir, dbSettings, upstream.URL, 0)

			serverHelper, err := helpers.NewServerTestHelper(ctx, configFile)
			Expect(err).NotTo(HaveOccurred())
			Expect(serverHelper.StartServer()).To(Succeed())
			defer func() {
				_ = serverHelper.StopServer()
			}()

			serverHelper.WaitForServerReady(10 * time.Second)

			syncStatus := serverHelper.WaitForPhase(status.SyncPhaseComplete, 30*time.Second)
			Expect(syncStatus.CreatedCount).To(Equal(101))
			Expect(syncStatus.Message).To(Equal("Total new users processed: 101"))
			Expect(syncStatus.LastSyncTime).NotTo(BeNil())

			Expect(helpers.CountRows(ctx, pool)).To(Equal(helpers.RowCounts{
				Users: 101, Addresses: 101, Companies: 101, CreditCards: 101,
			}))
			Expect(upstream.CardRequests()).To(Equal([]int{101}))

			resp, err := serverHelper.GetMetrics()
			Expect(err).NotTo(HaveOccurred())
			defer func() {
				_ = resp.Body.Close()
			}()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring("usersync_passes"))
		})

		It("should record a failed pass when cards run short", func() {
			upstream = helpers.NewUpstreamServer(3, 2)
			configFile := helpers.WriteConfigYAML(tempDir, dbSettings, upstream.URL, 1)

			serverHelper, err := helpers.NewServerTestHelper(ctx, configFile)
			Expect(err).NotTo(HaveOccurred())
			Expect(serverHelper.StartServer()).To(Succeed())
			defer func() {
				_ = serverHelper.StopServer()
			}()

			syncStatus := serverHelper.WaitForPhase(status.SyncPhaseFailed, 30*time.Second)
			Expect(syncStatus.AttemptCount).To(Equal(2))
			Expect(syncStatus.Message).To(ContainSubstring("credit cards"))

			Expect(helpers.CountRows(ctx, pool)).To(Equal(helpers.RowCounts{}))
			Expect(upstream.CardRequests()).To(Equal([]int{3, 3}))
		})
	})

	Context("Running single passes", func() {
		It("should only create users that are new since the last pass", func() {
			upstream = helpers.NewUpstreamServer(101, 200)
			configFile := helpers.WriteConfigYAML(tempDir, dbSettings, upstream.URL, 0)

			serverHelper, err := helpers.NewServerTestHelper(ctx, configFile)
			Expect(err).NotTo(HaveOccurred())
			app, err := serverHelper.BuildApp()
			Expect(err).NotTo(HaveOccurred())
			defer app.Close()

			report, err := app.RunOnce(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Created).To(Equal(101))

			By("running again with an unchanged directory")
			report, err = app.RunOnce(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Outcome).To(Equal(pkgsync.OutcomeEmpty))
			Expect(report.Created).To(BeZero())
			Expect(upstream.CardRequests()).To(Equal([]int{101}))

			By("growing the directory by four users")
			upstream.SetUsers(105)
			report, err = app.RunOnce(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Created).To(Equal(4))
			Expect(upstream.CardRequests()).To(Equal([]int{101, 4}))

			Expect(helpers.CountRows(ctx, pool).Users).To(Equal(105))
		})

		It("should leave the database untouched when cards run short", func() {
			upstream = helpers.NewUpstreamServer(3, 2)
			configFile := helpers.WriteConfigYAML(tempDir, dbSettings, upstream.URL, 0)

			serverHelper, err := helpers.NewServerTestHelper(ctx, configFile)
			Expect(err).NotTo(HaveOccurred())
			app, err := serverHelper.BuildApp()
			Expect(err).NotTo(HaveOccurred())
			defer app.Close()

			_, err = app.RunOnce(ctx)
			Expect(err).To(MatchError(pkgsync.ErrInsufficientCreditCards))
			Expect(upstream.CardRequests()).To(Equal([]int{3}))
			Expect(helpers.CountRows(ctx, pool)).To(Equal(helpers.RowCounts{}))
		})
	})
})
