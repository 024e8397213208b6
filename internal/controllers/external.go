package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/wurt83ow/workreport/internal/models"
	"go.uber.org/zap"
)

// ExtController talks to the external collaborators: the scoring service,
// the task catalog, the identity directory and the notification dispatcher.
type ExtController struct {
	scoringAddr  func() string
	catalogAddr  func() string
	identityAddr func() string
	notifyAddr   func() string
	log          Log
}

func NewExtController(scoringAddr, catalogAddr, identityAddr, notifyAddr func() string, log Log) *ExtController {
	return &ExtController{
		scoringAddr:  scoringAddr,
		catalogAddr:  catalogAddr,
		identityAddr: identityAddr,
		notifyAddr:   notifyAddr,
		log:          log,
	}
}

// normalizeAddr adds the http scheme and a trailing slash when missing.
func normalizeAddr(addr string) string {
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}

	if !strings.HasSuffix(addr, "/") {
		addr += "/"
	}

	return addr
}

func (c *ExtController) getJSON(url string, out interface{}) error {
	resp, err := http.Get(url)
	if err != nil {
		c.log.Info("unable to access external service, check that it is running: ", zap.Error(err))

		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Info("status code error: ", zap.String("status", resp.Status))

		return fmt.Errorf("status code error: %s", resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// GetMonthlyScores fetches the externally computed per-task score records
// and their opaque average for the month.
func (c *ExtController) GetMonthlyScores(userID, year, month int) (models.ExtScoreData, error) {
	url := fmt.Sprintf("%sscores?userId=%d&year=%d&month=%d", normalizeAddr(c.scoringAddr()), userID, year, month)

	var data models.ExtScoreData
	if err := c.getJSON(url, &data); err != nil {
		return models.ExtScoreData{}, err
	}

	return data, nil
}

// GetTask reads task metadata from the catalog by id.
func (c *ExtController) GetTask(taskID int) (models.Task, error) {
	url := fmt.Sprintf("%stask?id=%d", normalizeAddr(c.catalogAddr()), taskID)

	var task models.Task
	if err := c.getJSON(url, &task); err != nil {
		return models.Task{}, err
	}

	return task, nil
}

// GetUserProfile reads display data from the identity directory.
func (c *ExtController) GetUserProfile(userID int) (models.ExtUserProfile, error) {
	url := fmt.Sprintf("%suser?id=%d", normalizeAddr(c.identityAddr()), userID)

	var profile models.ExtUserProfile
	if err := c.getJSON(url, &profile); err != nil {
		return models.ExtUserProfile{}, err
	}

	profile.UserID = userID

	return profile, nil
}

// SendNotification hands a transition event to the notification dispatcher.
// Delivery beyond this POST is the dispatcher's business.
func (c *ExtController) SendNotification(event models.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	url := normalizeAddr(c.notifyAddr()) + "notify"

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		c.log.Info("unable to access notification dispatcher: ", zap.Error(err))

		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("status code error: %s", resp.Status)
	}

	return nil
}
