package tests

import (
	"fmt"
	"os"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	. "github.com/bunkmate-io/bunkmate/apps/api/echo"
	"github.com/bunkmate-io/bunkmate/core"
	"github.com/bunkmate-io/bunkmate/core/attendance"
	"github.com/bunkmate-io/bunkmate/core/calendar"
	"github.com/bunkmate-io/bunkmate/core/subject"
	"github.com/bunkmate-io/bunkmate/core/timetable"
	"github.com/bunkmate-io/bunkmate/core/user"
	appfs "github.com/bunkmate-io/bunkmate/fs"
	emailsvc "github.com/bunkmate-io/bunkmate/services/email"
	inmemdb "github.com/bunkmate-io/bunkmate/storage/database/inmem"
)

func TestMain(m *testing.M) {
	conf = core.NewConfig()
	conf.TestMode = true
	conf.Debug = false

	// set up DB & repos
	var err error
	db, err = inmemdb.Open()
	if err != nil {
		fmt.Printf("inmemdb.Open(): %v", err)
		os.Exit(1)
	}
	usrRepo = inmemdb.NewUserRepository(db)
	subjRepo = inmemdb.NewSubjectRepository(db)
	attRepo = inmemdb.NewAttendanceRepository(db)
	ttRepo = inmemdb.NewTimetableRepository(db)
	calRepo = inmemdb.NewCalendarRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewServiceMock(usrRepo, mailSvc, conf)
	subjSvc := subject.NewService(subjRepo)
	attSvc := attendance.NewService(attRepo, subjRepo)
	ttSvc := timetable.NewService(ttRepo, subjRepo)
	calSvc := calendar.NewService(calRepo)

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	attendance.InitValidators(validate, translator)
	calendar.InitValidators(validate, translator)

	core.ParseEmailTemplates(appfs.FS, testLogger)
	user.LoadCommonPasswords(appfs.FS, testLogger)

	// set up server
	app = NewServer(
		ServerDeps{
			Conf:          conf,
			Logger:        testLogger,
			UserSvc:       usrSvc,
			SubjectSvc:    subjSvc,
			AttendanceSvc: attSvc,
			TimetableSvc:  ttSvc,
			CalendarSvc:   calSvc,
			Validate:      validate,
			Translator:    translator,
		},
	)

	os.Exit(m.Run())
}
