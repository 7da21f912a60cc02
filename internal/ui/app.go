// internal/ui/app.go
package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/havokzero/myrient-browser/internal/config"
	"github.com/havokzero/myrient-browser/internal/domain"
	"github.com/havokzero/myrient-browser/internal/download"
	"github.com/havokzero/myrient-browser/internal/scraper"
	"github.com/havokzero/myrient-browser/internal/util"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"
)

// selectableEntry wraps a DirectoryEntry with a checkbox state.
type selectableEntry struct {
	Item     domain.DirectoryEntry
	Selected bool
}

// Run opens the browser window and blocks until it is closed.
func Run(cfg *config.Config, idx *scraper.HTTPIndex, logger *zap.Logger) {
	a := app.NewWithID("myrient-browser")
	a.SetIcon(appIcon())

	w := a.NewWindow("Myrient Browser")
	w.SetIcon(appIcon())
	w.Resize(fyne.NewSize(900, 600))

	loc := domain.NewLocation(cfg.BaseURL, cfg.StartPath)
	baseDownloadDir := cfg.DownloadDir
	maxConcurrent := cfg.Concurrency

	// ---------- LOG CONSOLE ----------
	logOutput := widget.NewMultiLineEntry()
	logOutput.SetPlaceHolder("Download log…")
	logOutput.Wrapping = fyne.TextWrapWord
	logOutput.SetMinRowsVisible(8)
	logOutput.Disable()

	const maxLogChars = 20000

	var logMu sync.Mutex
	appendLog := func(msg string) {
		logMu.Lock()
		defer logMu.Unlock()
		newText := logOutput.Text + msg + "\n"
		if len(newText) > maxLogChars {
			// keep last maxLogChars characters, cut at a newline boundary if possible
			newText = newText[len(newText)-maxLogChars:]
			if cut := strings.Index(newText, "\n"); cut != -1 {
				newText = newText[cut+1:]
			}
		}
		logOutput.SetText(newText)
	}

	console := download.NewConsole(appendLog, logger)
	dlMgr := download.NewManager(download.Options{
		ExtractZip: cfg.ExtractZip,
		UserAgent:  cfg.UserAgent,
		Console:    console,
	})

	// ---------- TOP BAR ----------
	urlEntry := widget.NewEntry()
	urlEntry.SetText(loc.URL())

	loadBtn := widget.NewButton("Load", nil)
	upBtn := widget.NewButton("← Back", nil)

	header := container.NewBorder(nil, nil, upBtn, loadBtn, urlEntry)

	// ---------- STATUS + PROGRESS ----------
	statusLabel := widget.NewLabel("Ready.")
	progressBar := widget.NewProgressBar()
	progressBar.Hide()

	// ---------- LEFT: DIRECTORY LIST + SEARCH ----------

	// allEntries = full set from current page
	// filteredIdx = indexes into allEntries that currently match the search term
	allEntries := []selectableEntry{}
	filteredIdx := []int{}
	selectedListIndex := -1 // index into filteredIdx

	selectedCountLabel := widget.NewLabel("Selected files: 0")

	var updateSelectedCount func()
	var loadLocation func(domain.Location)

	searchEntry := widget.NewEntry()
	searchEntry.SetPlaceHolder("Filter entries (e.g. 'Tetris')")

	list := widget.NewList(
		func() int { return len(filteredIdx) },
		func() fyne.CanvasObject {
			// row = checkbox + icon + name ... size + date
			return container.NewHBox(
				widget.NewCheck("", nil),
				widget.NewIcon(nil),
				widget.NewLabel(""),
				layout.NewSpacer(),
				widget.NewLabel(""),
				widget.NewLabel(""),
			)
		},
		func(i widget.ListItemID, o fyne.CanvasObject) {
			if i < 0 || i >= len(filteredIdx) {
				return
			}
			row := o.(*fyne.Container)
			chk := row.Objects[0].(*widget.Check)
			icon := row.Objects[1].(*widget.Icon)
			name := row.Objects[2].(*widget.Label)
			size := row.Objects[4].(*widget.Label)
			date := row.Objects[5].(*widget.Label)

			globalIdx := filteredIdx[i]
			e := &allEntries[globalIdx]

			// Avoid firing OnChanged while we sync state
			chk.OnChanged = nil

			icon.SetResource(entryIcon(e.Item))
			name.SetText(e.Item.DisplayName())
			if e.Item.IsDir {
				size.SetText("")
				chk.Disable()
			} else {
				size.SetText(util.FormatSize(e.Item.Size))
				chk.Enable()
			}
			date.SetText(e.Item.LastModified)
			chk.SetChecked(e.Selected)

			iCopy := i
			chk.OnChanged = func(b bool) {
				globalIdx := filteredIdx[iCopy]
				allEntries[globalIdx].Selected = b
				updateSelectedCount()
			}
		},
	)

	list.OnSelected = func(id widget.ListItemID) {
		selectedListIndex = int(id)
	}
	list.OnUnselected = func(id widget.ListItemID) {
		if selectedListIndex == int(id) {
			selectedListIndex = -1
		}
	}

	updateSelectedCount = func() {
		count := 0
		var bytes int64
		for _, e := range allEntries {
			if e.Selected && !e.Item.IsDir {
				count++
				if e.Item.Size != nil {
					bytes += *e.Item.Size
				}
			}
		}
		selectedCountLabel.SetText(fmt.Sprintf("Selected files: %d (%s)", count, util.FormatBytes(bytes, 1)))
	}

	applyFilter := func(term string) {
		term = strings.ToLower(strings.TrimSpace(term))
		filteredIdx = filteredIdx[:0]
		for i, e := range allEntries {
			if term == "" || strings.Contains(strings.ToLower(e.Item.DisplayName()), term) {
				filteredIdx = append(filteredIdx, i)
			}
		}

		selectedListIndex = -1
		list.UnselectAll()
		list.Refresh()
		updateSelectedCount()

		if len(allEntries) > 0 {
			statusLabel.SetText(fmt.Sprintf("Showing %d of %d entries", len(filteredIdx), len(allEntries)))
		}
	}

	searchEntry.OnChanged = applyFilter

	// Only the latest load may publish its result.
	var (
		loadMu     sync.Mutex
		loadCancel context.CancelFunc = func() {}
		loadSeq    int
	)

	loadLocation = func(target domain.Location) {
		loadMu.Lock()
		loadCancel()
		ctx, cancel := context.WithCancel(context.Background())
		loadCancel = cancel
		loadSeq++
		seq := loadSeq
		loadMu.Unlock()

		urlEntry.SetText(target.URL())
		statusLabel.SetText("Loading: " + target.URL())
		progressBar.Show()
		progressBar.SetValue(0)

		go func() {
			defer cancel()
			res, err := idx.List(ctx, target.URL())

			loadMu.Lock()
			stale := seq != loadSeq
			loadMu.Unlock()
			if stale {
				return
			}
			progressBar.Hide()

			if err != nil {
				statusLabel.SetText("Error: " + err.Error())
				console.LogError("load "+target.URL(), err)
				dialog.ShowConfirm("Failed to load directory contents", err.Error()+"\n\nRetry?", func(retry bool) {
					if retry {
						loadLocation(target)
					}
				}, w)
				return
			}

			loc = target
			if loc.CanGoUp(cfg.PathFloor) {
				upBtn.Enable()
			} else {
				upBtn.Disable()
			}

			allEntries = make([]selectableEntry, len(res))
			for i, fe := range res {
				allEntries[i] = selectableEntry{Item: fe}
			}
			searchEntry.SetText("")
			applyFilter("")
			statusLabel.SetText(fmt.Sprintf("%d items in %s", len(allEntries), loc.Path))
		}()
	}

	loadBtn.OnTapped = func() {
		target, err := domain.ParseLocation(urlEntry.Text)
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		loadLocation(target)
	}
	upBtn.OnTapped = func() {
		if loc.CanGoUp(cfg.PathFloor) {
			loadLocation(loc.Up(cfg.PathFloor))
		}
	}

	// ---------- ACTION BUTTONS ----------

	openRemoteDirBtn := widget.NewButton("Open directory", func() {
		if selectedListIndex < 0 || selectedListIndex >= len(filteredIdx) {
			dialog.ShowInformation("Info", "Select a directory entry first.", w)
			return
		}
		e := allEntries[filteredIdx[selectedListIndex]]
		if !e.Item.IsDir {
			dialog.ShowInformation("Info", "Selected item is not a directory.", w)
			return
		}
		loadLocation(loc.Into(e.Item.Name))
	})

	downloadDirLabel := widget.NewLabel("Download folder: " + baseDownloadDir)
	setDownloadDirBtn := widget.NewButton("Set download folder…", func() {
		fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil || uri == nil {
				return
			}
			baseDownloadDir = uri.Path()
			downloadDirLabel.SetText("Download folder: " + baseDownloadDir)
			console.Log("Download folder set to: " + baseDownloadDir)
		}, w)
		fd.Show()
	})

	concurrencyLabel := widget.NewLabel(fmt.Sprintf("Concurrent downloads: %d", maxConcurrent))
	concurrencySlider := widget.NewSlider(1, 100)
	concurrencySlider.Step = 1
	concurrencySlider.SetValue(float64(maxConcurrent))
	concurrencySlider.OnChanged = func(v float64) {
		maxConcurrent = int(v)
		concurrencyLabel.SetText(fmt.Sprintf("Concurrent downloads: %d", maxConcurrent))
	}

	rootURL := domain.NewLocation(cfg.BaseURL, cfg.StartPath).URL()
	jobFor := func(e domain.DirectoryEntry) download.Job {
		u := loc.EntryURL(e)
		return download.Job{
			Name:      e.DisplayName(),
			URL:       u,
			TargetDir: util.TargetDirFor(baseDownloadDir, rootURL, u),
		}
	}

	startDownloads := func(jobs []download.Job) {
		progressBar.Show()
		progressBar.SetValue(0)
		q := &download.Queue{Manager: dlMgr, Concurrency: maxConcurrent, Attempts: cfg.DownloadAttempts}

		go func() {
			failed := q.Run(context.Background(), jobs, func(r download.Result) {
				ratio := float64(r.Completed) / float64(r.Total)
				progressBar.SetValue(ratio)
				if r.Err != nil {
					statusLabel.SetText(fmt.Sprintf("Queue: %d / %d (%.1f%%) – ERROR %s: %v",
						r.Completed, r.Total, ratio*100.0, r.Job.Name, r.Err))
					return
				}
				statusLabel.SetText(fmt.Sprintf("Queue: %d / %d (%.1f%%) – finished %s",
					r.Completed, r.Total, ratio*100.0, r.Job.Name))
			})
			if failed > 0 {
				statusLabel.SetText(fmt.Sprintf("Downloads finished with %d errors.", failed))
				return
			}
			statusLabel.SetText("All downloads completed.")
		}()
	}

	downloadBtn := widget.NewButton("Download file", func() {
		if selectedListIndex < 0 || selectedListIndex >= len(filteredIdx) {
			dialog.ShowInformation("Info", "Select a file entry first.", w)
			return
		}
		e := allEntries[filteredIdx[selectedListIndex]]
		if e.Item.IsDir {
			dialog.ShowInformation("Info", "Selected item is a directory.", w)
			return
		}
		startDownloads([]download.Job{jobFor(e.Item)})
	})

	selectAllBtn := widget.NewButton("Select all", func() {
		for _, i := range filteredIdx {
			allEntries[i].Selected = !allEntries[i].Item.IsDir
		}
		list.Refresh()
		updateSelectedCount()
	})

	clearSelectionBtn := widget.NewButton("Clear selection", func() {
		for i := range allEntries {
			allEntries[i].Selected = false
		}
		selectedListIndex = -1
		list.UnselectAll()
		list.Refresh()
		updateSelectedCount()
	})

	downloadSelectedBtn := widget.NewButton("Download selected", func() {
		var jobs []download.Job
		var total int64
		for _, e := range allEntries {
			if e.Selected && !e.Item.IsDir {
				jobs = append(jobs, jobFor(e.Item))
				if e.Item.Size != nil {
					total += *e.Item.Size
				}
			}
		}
		if len(jobs) == 0 {
			dialog.ShowInformation("Info", "No files selected.", w)
			return
		}
		console.LogTotalSize(util.FormatBytes(total, 2))
		startDownloads(jobs)
	})

	// ---------- LAYOUT ----------
	leftSide := container.NewBorder(searchEntry, nil, nil, nil, list)

	rightSide := container.NewVBox(
		widget.NewLabelWithStyle("Actions & Status", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		openRemoteDirBtn,
		concurrencyLabel,
		concurrencySlider,
		downloadDirLabel,
		setDownloadDirBtn,
		downloadBtn,
		downloadSelectedBtn,
		container.NewHBox(selectAllBtn, clearSelectionBtn),
		selectedCountLabel,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Progress", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		progressBar,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Status", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		statusLabel,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Log", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		logOutput,
	)

	mainSplit := container.NewHSplit(leftSide, rightSide)
	mainSplit.SetOffset(0.6) // 60% left, 40% right

	w.SetContent(container.NewBorder(header, nil, nil, nil, mainSplit))

	loadLocation(loc)
	w.ShowAndRun()
}
